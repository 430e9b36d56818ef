// Package ledger keeps the outcome of batch runs in SQLite so repeated
// comparisons over many scene pairs and calibration offsets can be queried
// afterwards.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MayerT1/FSH-Python3-Old/calibration"
	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"github.com/MayerT1/FSH-Python3-Old/pairwise"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	label       TEXT,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pair_results (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	pair_key     TEXT NOT NULL,
	scene1       TEXT NOT NULL,
	scene2       TEXT NOT NULL,
	delta_s1     REAL NOT NULL,
	delta_c1     REAL NOT NULL,
	delta_s2     REAL NOT NULL,
	delta_c2     REAL NOT NULL,
	block_size   INTEGER NOT NULL,
	r            REAL,
	rmse         REAL,
	bias         REAL,
	p_value      REAL,
	valid_count  INTEGER NOT NULL DEFAULT 0,
	stage        TEXT,
	error        TEXT,
	output_path  TEXT,
	pairs        BLOB,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_pair_results_run ON pair_results(run_id);
`

// Store records pair results in SQLite
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// batch workers write concurrently; one connection serializes them
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Record is one stored pair outcome
type Record struct {
	ID         int64
	RunID      string
	Key        string
	Scene1     string
	Scene2     string
	Delta1     calibration.Delta
	Delta2     calibration.Delta
	BlockSize  int
	R          float64
	RMSE       float64
	Bias       float64
	PValue     float64
	Count      int
	Stage      string
	Err        string
	OutputPath string
	CreatedAt  time.Time
}

// Failed reports whether the pair run ended in an error
func (r Record) Failed() bool {
	return r.Err != ""
}

// Run is a handle on one batch run; it implements pairwise.Recorder
type Run struct {
	ID    string
	store *Store
}

// NewRun registers a run under a fresh id
func (s *Store) NewRun(ctx context.Context, label string) (*Run, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, label, created_at) VALUES (?, ?, ?)`,
		id, label, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Run{ID: id, store: s}, nil
}

// Record stores the outcome of one request
func (r *Run) Record(ctx context.Context, req pairwise.Request, res *pairwise.Result, runErr error) error {
	return r.store.record(ctx, r.ID, req, res, runErr)
}

func (s *Store) record(ctx context.Context, runID string, req pairwise.Request, res *pairwise.Result, runErr error) error {
	var (
		r, rmse, bias, pValue sql.NullFloat64
		count                 int
		stage, errText, path  sql.NullString
		blob                  []byte
		blockSize             = req.BlockSize
	)

	if res != nil {
		r = sql.NullFloat64{Float64: res.R, Valid: true}
		rmse = sql.NullFloat64{Float64: res.RMSE, Valid: true}
		bias = sql.NullFloat64{Float64: res.Bias, Valid: true}
		pValue = sql.NullFloat64{Float64: res.PValue, Valid: true}
		count = res.Count
		path = sql.NullString{String: res.OutputPath, Valid: true}
		blockSize = res.Layout.BlockSize

		var err error
		if blob, err = encodePairs(res.V1, res.V2); err != nil {
			return fmt.Errorf("encode pairs: %w", err)
		}
	}
	if runErr != nil {
		errText = sql.NullString{String: runErr.Error(), Valid: true}
		if st, ok := errdefs.StageOf(runErr); ok {
			stage = sql.NullString{String: string(st), Valid: true}
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pair_results (run_id, pair_key, scene1, scene2, delta_s1, delta_c1, delta_s2, delta_c2,
			block_size, r, rmse, bias, p_value, valid_count, stage, error, output_path, pairs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, req.Key(), req.Scene1, req.Scene2, req.Delta1.S, req.Delta1.C, req.Delta2.S, req.Delta2.C,
		blockSize, r, rmse, bias, pValue, count, stage, errText, path, blob,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert pair result %s: %w", req.Key(), err)
	}
	return nil
}

// Results lists the records of a run in insertion order
func (s *Store) Results(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, pair_key, scene1, scene2, delta_s1, delta_c1, delta_s2, delta_c2, block_size,
			r, rmse, bias, p_value, valid_count, stage, error, output_path, created_at
		 FROM pair_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec                   Record
			r, rmse, bias, pValue sql.NullFloat64
			stage, errText, path  sql.NullString
			createdStr            string
		)
		err := rows.Scan(&rec.ID, &rec.RunID, &rec.Key, &rec.Scene1, &rec.Scene2,
			&rec.Delta1.S, &rec.Delta1.C, &rec.Delta2.S, &rec.Delta2.C, &rec.BlockSize,
			&r, &rmse, &bias, &pValue, &rec.Count, &stage, &errText, &path, &createdStr)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		rec.R, rec.RMSE, rec.Bias, rec.PValue = r.Float64, rmse.Float64, bias.Float64, pValue.Float64
		rec.Stage, rec.Err, rec.OutputPath = stage.String, errText.String, path.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ErrNoPairs reports a record stored without valid pairs (a failed run)
var ErrNoPairs = errors.New("record has no stored pairs")

// Pairs returns the valid-cell pairs stored with record id
func (s *Store) Pairs(ctx context.Context, id int64) (v1, v2 []float64, err error) {
	var blob []byte
	if err := s.db.QueryRowContext(ctx, `SELECT pairs FROM pair_results WHERE id = ?`, id).Scan(&blob); err != nil {
		return nil, nil, fmt.Errorf("get pairs %d: %w", id, err)
	}
	if len(blob) == 0 {
		return nil, nil, ErrNoPairs
	}
	return decodePairs(blob)
}
