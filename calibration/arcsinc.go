package calibration

import (
	"math"

	"github.com/MayerT1/FSH-Python3-Old/algorithms/common"
)

// SincTableSize is the number of samples of sinc on [0, pi] used to invert it
const SincTableSize = 100

// Model maps a normalized coherence magnitude gamma and a shape parameter c
// to a height estimate.
type Model interface {
	Height(gamma, c float64) float64
}

// ModelFunc adapts a plain function to Model
type ModelFunc func(gamma, c float64) float64

func (f ModelFunc) Height(gamma, c float64) float64 {
	return f(gamma, c)
}

// InverseSinc inverts gamma = sinc(x) = sin(x)/x over x in [0, pi] and
// scales the result to a height x*c, so heights lie in [0, pi*c]. gamma is
// clamped to the table's domain [0, 1] first.
type InverseSinc struct {
	table *common.LinearTable
}

// NewInverseSinc tabulates sinc at SincTableSize points and builds the
// inverse lookup.
func NewInverseSinc() *InverseSinc {
	// sinc falls monotonically from 1 at x=0 to 0 at x=pi, so listing the
	// samples from x=pi down gives increasing gamma knots
	gammas := make([]float64, SincTableSize)
	xs := make([]float64, SincTableSize)
	step := math.Pi / float64(SincTableSize-1)

	for k := 0; k < SincTableSize; k++ {
		x := math.Pi - float64(k)*step
		xs[k] = x
		gammas[k] = sinc(x)
	}
	gammas[0] = 0
	xs[0] = math.Pi
	gammas[SincTableSize-1] = 1
	xs[SincTableSize-1] = 0

	table, err := common.NewLinearTable(gammas, xs)
	if err != nil {
		// knots are generated above and strictly increasing
		panic(err)
	}
	return &InverseSinc{table: table}
}

// Height returns the height for gamma; NaN gamma gives NaN
func (s *InverseSinc) Height(gamma, c float64) float64 {
	if common.IsMissing(gamma) {
		return common.Missing
	}
	lo, hi := s.table.Domain()
	gamma = common.Clamp(gamma, lo, hi)

	height := s.table.At(gamma) * c
	if height < 0 {
		return 0
	}
	return height
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(x) / x
}

var defaultModel = NewInverseSinc()

// DefaultModel returns the shared inverse-sinc model
func DefaultModel() Model {
	return defaultModel
}
