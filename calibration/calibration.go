// Package calibration converts raw coherence-magnitude images into height
// images with a bias-corrected inverse-sinc model.
package calibration

import (
	"math"

	"github.com/MayerT1/FSH-Python3-Old/algorithms/common"
	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"gonum.org/v1/gonum/mat"
)

// Baseline calibration constants. Per-image parameters are these plus a
// caller-supplied Delta.
const (
	BaselineScale = 0.65
	BaselineShape = 13.0
)

// Delta is the caller-controlled offset from the baseline parameters
type Delta struct {
	S float64 `json:"delta_s"`
	C float64 `json:"delta_c"`
}

// Params holds the scale S and shape C used for one image
type Params struct {
	S float64 `json:"s"`
	C float64 `json:"c"`
}

// ParamsFromDelta applies d to the baseline constants
func ParamsFromDelta(d Delta) Params {
	return Params{
		S: BaselineScale + d.S,
		C: BaselineShape + d.C,
	}
}

// Validate rejects parameters the transform cannot use
func (p Params) Validate() error {
	if !common.IsFinite(p.S) || p.S <= 0 {
		return errdefs.InvalidParameter("scale S must be positive and finite, got %g", p.S)
	}
	if !common.IsFinite(p.C) || p.C <= 0 {
		return errdefs.InvalidParameter("shape C must be positive and finite, got %g", p.C)
	}
	return nil
}

// MaxHeight is the saturation height pi*C of the model
func (p Params) MaxHeight() float64 {
	return math.Pi * p.C
}

// Calibrate converts raw into a height image: gamma = raw/S, then
// model.Height(gamma, C) per element. Missing gamma stays missing whatever
// the model returns. raw is not modified.
func Calibrate(raw mat.Matrix, p Params, model Model) (*mat.Dense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if model == nil {
		model = DefaultModel()
	}

	rows, cols := raw.Dims()
	if rows == 0 || cols == 0 {
		return nil, errdefs.Format("empty image (%dx%d)", rows, cols)
	}
	height := mat.NewDense(rows, cols, nil)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			gamma := raw.At(i, j) / p.S
			if common.IsMissing(gamma) {
				height.Set(i, j, common.Missing)
				continue
			}
			height.Set(i, j, model.Height(gamma, p.C))
		}
	}
	return height, nil
}
