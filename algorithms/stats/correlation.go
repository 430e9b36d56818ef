package stats

import (
	"math"

	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Pearson computes the Pearson correlation coefficient of two paired
// sequences. R is undefined for fewer than two pairs or when either
// sequence is constant; both cases are ErrInsufficientData rather than NaN.
func Pearson(v1, v2 []float64) (float64, error) {
	if err := checkPaired(v1, v2); err != nil {
		return 0, err
	}
	if len(v1) < 2 {
		return 0, errdefs.InsufficientData("correlation needs at least 2 pairs, got %d", len(v1))
	}

	_, std1 := stat.MeanStdDev(v1, nil)
	_, std2 := stat.MeanStdDev(v2, nil)
	if std1 == 0 || std2 == 0 || math.IsNaN(std1) || math.IsNaN(std2) {
		return 0, errdefs.InsufficientData("correlation undefined for a constant sequence (std %g, %g)", std1, std2)
	}

	return clampCorrelation(stat.Correlation(v1, v2, nil)), nil
}

// CorrelationPValue is the two-sided p-value of the null hypothesis R = 0
// for n pairs, from Student's t with n-2 degrees of freedom.
func CorrelationPValue(r float64, n int) float64 {
	if n <= 2 || math.IsNaN(r) {
		return 1.0
	}
	if math.Abs(r) >= 1 {
		return 0.0
	}

	df := float64(n - 2)
	t := math.Abs(r) * math.Sqrt(df/(1.0-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(t)
}

// clampCorrelation ensures correlation is in valid range [-1, 1]
func clampCorrelation(correlation float64) float64 {
	if correlation > 1.0 {
		return 1.0
	} else if correlation < -1.0 {
		return -1.0
	}
	return correlation
}

func checkPaired(v1, v2 []float64) error {
	if len(v1) != len(v2) {
		return errdefs.Format("paired sequences differ in length: %d vs %d", len(v1), len(v2))
	}
	return nil
}
