package stats

import (
	"math"

	"github.com/MayerT1/FSH-Python3-Old/algorithms/common"
	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"gonum.org/v1/gonum/floats"
)

// RMSE is the root-mean-square difference of two paired sequences
func RMSE(v1, v2 []float64) (float64, error) {
	if err := checkPaired(v1, v2); err != nil {
		return 0, err
	}
	if len(v1) == 0 {
		return 0, errdefs.InsufficientData("rmse needs at least 1 pair")
	}

	sumSquares := 0.0
	for i := range v1 {
		d := v1[i] - v2[i]
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(v1))), nil
}

// Bias is the mean signed difference v1 - v2
func Bias(v1, v2 []float64) (float64, error) {
	if err := checkPaired(v1, v2); err != nil {
		return 0, err
	}
	if len(v1) == 0 {
		return 0, errdefs.InsufficientData("bias needs at least 1 pair")
	}

	diff := make([]float64, len(v1))
	floats.SubTo(diff, v1, v2)
	return common.Mean(diff), nil
}
