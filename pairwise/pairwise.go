// Package pairwise runs the height-agreement pipeline for a scene pair:
// load, calibrate, block-average, mask and compare, then persist the
// valid pairs.
package pairwise

import (
	"context"

	"github.com/MayerT1/FSH-Python3-Old/algorithms/common"
	"github.com/MayerT1/FSH-Python3-Old/calibration"
	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"github.com/MayerT1/FSH-Python3-Old/grid"
	"github.com/MayerT1/FSH-Python3-Old/logging"
	"github.com/MayerT1/FSH-Python3-Old/metric"
	"github.com/MayerT1/FSH-Python3-Old/sceneio"
)

// Request identifies one scene pair and its calibration offsets
type Request struct {
	Scene1 string            `json:"scene1"`
	Scene2 string            `json:"scene2"`
	Delta1 calibration.Delta `json:"delta1"`
	Delta2 calibration.Delta `json:"delta2"`

	// BlockSize overrides Config.BlockSize when positive
	BlockSize int `json:"block_size,omitempty"`
}

// Key is the pair key "{scene1}_{scene2}"
func (r Request) Key() string {
	return sceneio.PairKey(r.Scene1, r.Scene2)
}

// Result is the outcome of a successful run
type Result struct {
	Key        string             `json:"key"`
	R          float64            `json:"r"`
	RMSE       float64            `json:"rmse"`
	Bias       float64            `json:"bias"`
	PValue     float64            `json:"p_value"`
	Count      int                `json:"count"`
	Params1    calibration.Params `json:"params1"`
	Params2    calibration.Params `json:"params2"`
	Layout     grid.Layout        `json:"layout"`
	OutputPath string             `json:"output_path"`
	V1         []float64          `json:"-"`
	V2         []float64          `json:"-"`
}

// Pipeline runs requests against one data directory
type Pipeline struct {
	config *Config
	paths  sceneio.Paths
	loader sceneio.Loader
	writer sceneio.PairWriter
	model  calibration.Model
	logger logging.Logger
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithLogger replaces the component logger
func WithLogger(logger logging.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithModel replaces the inverse-sinc height model
func WithModel(model calibration.Model) Option {
	return func(p *Pipeline) {
		p.model = model
	}
}

// WithLoader replaces the input loader
func WithLoader(loader sceneio.Loader) Option {
	return func(p *Pipeline) {
		p.loader = loader
	}
}

// WithWriter replaces the pair writer
func WithWriter(writer sceneio.PairWriter) Option {
	return func(p *Pipeline) {
		p.writer = writer
	}
}

// NewPipeline builds a pipeline rooted at directory. A nil cfg uses
// DefaultConfig.
func NewPipeline(directory string, cfg *Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	paths := sceneio.NewPaths(directory, cfg.OutputSubdir)
	p := &Pipeline{
		config: cfg,
		paths:  paths,
		loader: sceneio.NewLoader(paths, cfg.InputFormat),
		writer: sceneio.NewJSONPairWriter(paths),
		model:  calibration.DefaultModel(),
		logger: logging.WithFields(logging.Fields{
			"component": "pairwise",
		}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if cfg.LogLevel != "" {
		p.logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	}
	return p, nil
}

// BlockSize is the block size req runs with: its own when set, otherwise
// the configured one.
func (p *Pipeline) BlockSize(req Request) int {
	if req.BlockSize > 0 {
		return req.BlockSize
	}
	return p.config.BlockSize
}

// Run executes Load -> Calibrate x2 -> Aggregate x2 -> Compare -> Persist.
// Any failure stops the run before anything is written and is returned as
// an errdefs.StageError.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	key := req.Key()
	blockSize := p.BlockSize(req)

	logger := p.logger.WithContext(ctx).WithFields(logging.Fields{
		"pair":       key,
		"block_size": blockSize,
	})
	logger.Debug("Starting pairwise comparison")

	fail := func(stage errdefs.Stage, err error) (*Result, error) {
		err = errdefs.AtStage(stage, err)
		logger.Error(err, "Pairwise comparison failed", logging.Fields{"stage": string(stage)})
		return nil, err
	}

	pair, err := p.loader.Load(ctx, key)
	if err != nil {
		return fail(errdefs.StageLoad, err)
	}

	params1 := calibration.ParamsFromDelta(req.Delta1)
	params2 := calibration.ParamsFromDelta(req.Delta2)

	height1, err := calibration.Calibrate(pair.I1, params1, p.model)
	if err != nil {
		return fail(errdefs.StageCalibrate, err)
	}
	height2, err := calibration.Calibrate(pair.I2, params2, p.model)
	if err != nil {
		return fail(errdefs.StageCalibrate, err)
	}

	means1, err := grid.BlockMeans(height1, blockSize)
	if err != nil {
		return fail(errdefs.StageAggregate, err)
	}
	means2, err := grid.BlockMeans(height2, blockSize)
	if err != nil {
		return fail(errdefs.StageAggregate, err)
	}
	layout, err := grid.NewLayout(pair.Lines(), pair.Samples(), blockSize)
	if err != nil {
		return fail(errdefs.StageAggregate, err)
	}
	logger.Debug("Aggregated height grids", logging.Fields{
		"block_rows":   layout.BlockRows,
		"block_cols":   layout.BlockCols,
		"present1":     common.CountPresent(means1),
		"present2":     common.CountPresent(means2),
		"mean_height1": common.MeanWithoutNaN(means1),
		"mean_height2": common.MeanWithoutNaN(means2),
	})
	if layout.DiscardedRows() > 0 || layout.DiscardedCols() > 0 {
		logger.Debug("Trimmed trailing remainder", logging.Fields{
			"discarded_rows": layout.DiscardedRows(),
			"discarded_cols": layout.DiscardedCols(),
		})
	}

	cmp, err := metric.Compare(means1, means2, p.filters(params1, params2)...)
	if err != nil {
		return fail(errdefs.StageCompare, err)
	}

	path, err := p.writer.WritePairs(ctx, key, cmp.V1, cmp.V2)
	if err != nil {
		return fail(errdefs.StagePersist, err)
	}

	logger.Info("Pairwise comparison completed", logging.Fields{
		"r":     cmp.R,
		"rmse":  cmp.RMSE,
		"bias":  cmp.Bias,
		"count": cmp.Count,
	})

	return &Result{
		Key:        key,
		R:          cmp.R,
		RMSE:       cmp.RMSE,
		Bias:       cmp.Bias,
		PValue:     cmp.PValue,
		Count:      cmp.Count,
		Params1:    params1,
		Params2:    params2,
		Layout:     layout,
		OutputPath: path,
		V1:         cmp.V1,
		V2:         cmp.V2,
	}, nil
}

func (p *Pipeline) filters(params1, params2 calibration.Params) []metric.Filter {
	var filters []metric.Filter
	if sf := p.config.SaturationFilter; sf.Enabled {
		filters = append(filters, metric.SaturationFilter(sf.LowCutoff, sf.HighMargin, params1.MaxHeight(), params2.MaxHeight()))
	}
	if or := p.config.OutlierRemoval; or.Enabled {
		filters = append(filters, metric.OutlierFilter(or.Window, or.Threshold))
	}
	return filters
}

// ComputePairwiseErrorMetric loads the pair "{scene1}_{scene2}" from
// directory/output, compares the calibrated, block-averaged height images,
// writes the valid pairs next to the input and returns R and RMSE.
func ComputePairwiseErrorMetric(scene1, scene2 string, deltaS1, deltaC1, deltaS2, deltaC2 float64, directory string, blockSize int) (r, rmse float64, err error) {
	cfg := DefaultConfig()
	cfg.BlockSize = blockSize

	p, err := NewPipeline(directory, cfg)
	if err != nil {
		return 0, 0, errdefs.AtStage(errdefs.StageAggregate, err)
	}

	res, err := p.Run(context.Background(), Request{
		Scene1: scene1,
		Scene2: scene2,
		Delta1: calibration.Delta{S: deltaS1, C: deltaC1},
		Delta2: calibration.Delta{S: deltaS2, C: deltaC2},
	})
	if err != nil {
		return 0, 0, err
	}
	return res.R, res.RMSE, nil
}
