package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/MayerT1/FSH-Python3-Old/calibration"
	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"github.com/MayerT1/FSH-Python3-Old/grid"
	"github.com/MayerT1/FSH-Python3-Old/logging"
	"github.com/MayerT1/FSH-Python3-Old/pairwise"
	"github.com/MayerT1/FSH-Python3-Old/sceneio"
	"gonum.org/v1/gonum/mat"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndResults(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	run, err := s.NewRun(ctx, "sweep")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run id")
	}

	ok := pairwise.Request{Scene1: "1", Scene2: "2", Delta1: calibration.Delta{S: 0.1, C: -1}}
	res := &pairwise.Result{
		Key:        ok.Key(),
		R:          0.9,
		RMSE:       0.5,
		Bias:       -0.25,
		PValue:     0.1,
		Count:      3,
		Layout:     grid.Layout{BlockSize: 2},
		OutputPath: "/tmp/1_2_I1andI2.json",
		V1:         []float64{1, 2, 3},
		V2:         []float64{1.5, 2, 3.5},
	}
	if err := run.Record(ctx, ok, res, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}

	bad := pairwise.Request{Scene1: "3", Scene2: "4", BlockSize: 7}
	runErr := errdefs.AtStage(errdefs.StageLoad, errdefs.NotFound("missing %s", bad.Key()))
	if err := run.Record(ctx, bad, nil, runErr); err != nil {
		t.Fatalf("Record failure: %v", err)
	}

	records, err := s.Results(ctx, run.ID)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	got := records[0]
	if got.Key != "1_2" || got.R != 0.9 || got.RMSE != 0.5 || got.Count != 3 || got.BlockSize != 2 {
		t.Errorf("unexpected success record: %+v", got)
	}
	if got.Delta1 != (calibration.Delta{S: 0.1, C: -1}) {
		t.Errorf("Delta1 = %+v", got.Delta1)
	}
	if got.Failed() || got.CreatedAt.IsZero() {
		t.Errorf("record should be a timestamped success: %+v", got)
	}

	failed := records[1]
	if !failed.Failed() || failed.Stage != string(errdefs.StageLoad) {
		t.Errorf("unexpected failure record: %+v", failed)
	}
	if failed.BlockSize != 7 {
		t.Errorf("failed BlockSize = %d, want the requested 7", failed.BlockSize)
	}

	v1, v2, err := s.Pairs(ctx, got.ID)
	if err != nil {
		t.Fatalf("Pairs: %v", err)
	}
	if !slices.Equal(v1, res.V1) || !slices.Equal(v2, res.V2) {
		t.Errorf("pairs = %v %v, want %v %v", v1, v2, res.V1, res.V2)
	}

	if _, _, err := s.Pairs(ctx, failed.ID); !errors.Is(err, ErrNoPairs) {
		t.Errorf("expected ErrNoPairs for failed record, got %v", err)
	}
}

func TestResultsScopedToRun(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	a, _ := s.NewRun(ctx, "a")
	b, _ := s.NewRun(ctx, "b")
	if a.ID == b.ID {
		t.Fatal("run ids must differ")
	}

	req := pairwise.Request{Scene1: "1", Scene2: "2"}
	if err := a.Record(ctx, req, nil, errors.New("boom")); err != nil {
		t.Fatal(err)
	}

	records, err := s.Results(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("run b should be empty, got %d records", len(records))
	}
}

func TestEncodePairs(t *testing.T) {
	blob, err := encodePairs([]float64{}, []float64{})
	if err != nil {
		t.Fatal(err)
	}
	v1, v2, err := decodePairs(blob)
	if err != nil || len(v1) != 0 || len(v2) != 0 {
		t.Errorf("empty pairs: %v %v %v", v1, v2, err)
	}

	if _, err := encodePairs([]float64{1}, nil); err == nil {
		t.Error("expected error for length mismatch")
	}
	if _, _, err := decodePairs([]byte("not zstd")); err == nil {
		t.Error("expected error for corrupt blob")
	}
}

func TestBatchRecording(t *testing.T) {
	dir := t.TempDir()
	paths := sceneio.NewPaths(dir, "")
	i1 := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	i2 := mat.NewDense(2, 2, []float64{1, 2, 3, 5})
	pair := &sceneio.ImagePair{Key: "1_2", I1: i1, I2: i2}
	if err := sceneio.WriteNetCDFPair(paths.Input(pair.Key, sceneio.FormatNetCDF), pair); err != nil {
		t.Fatalf("WriteNetCDFPair: %v", err)
	}

	cfg := pairwise.DefaultConfig()
	cfg.BlockSize = 1
	identity := calibration.ModelFunc(func(gamma, c float64) float64 { return gamma })
	p, err := pairwise.NewPipeline(dir, cfg,
		pairwise.WithLogger(&logging.NoOpLogger{}),
		pairwise.WithModel(identity),
	)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	s := tempStore(t)
	ctx := context.Background()
	run, err := s.NewRun(ctx, "batch")
	if err != nil {
		t.Fatal(err)
	}

	unit := calibration.Delta{S: 1 - calibration.BaselineScale}
	reqs := []pairwise.Request{
		{Scene1: "1", Scene2: "2", Delta1: unit, Delta2: unit},
		{Scene1: "5", Scene2: "6", Delta1: unit, Delta2: unit},
	}
	pairwise.RunBatch(ctx, p, reqs, 2, run)

	records, err := s.Results(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	byKey := make(map[string]Record)
	for _, r := range records {
		byKey[r.Key] = r
	}
	if r := byKey["1_2"]; r.Failed() || r.RMSE != 0.5 || r.Count != 4 {
		t.Errorf("unexpected record for 1_2: %+v", r)
	}
	if r := byKey["5_6"]; !r.Failed() || r.Stage != string(errdefs.StageLoad) || r.BlockSize != cfg.BlockSize {
		t.Errorf("unexpected record for 5_6: %+v", r)
	}
}

func TestCancelledBatchIsRecorded(t *testing.T) {
	p, err := pairwise.NewPipeline(t.TempDir(), nil, pairwise.WithLogger(&logging.NoOpLogger{}))
	if err != nil {
		t.Fatal(err)
	}

	s := tempStore(t)
	run, err := s.NewRun(context.Background(), "cancelled")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reqs := []pairwise.Request{{Scene1: "1", Scene2: "2"}, {Scene1: "3", Scene2: "4"}}
	pairwise.RunBatch(ctx, p, reqs, 1, run)

	records, err := s.Results(context.Background(), run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(reqs) {
		t.Fatalf("expected %d records, got %d", len(reqs), len(records))
	}
	for _, r := range records {
		if !r.Failed() || r.BlockSize != pairwise.DefaultConfig().BlockSize {
			t.Errorf("unexpected record: %+v", r)
		}
	}
}
