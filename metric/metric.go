// Package metric masks paired mean-grids to their valid cells and computes
// the agreement statistics between them.
package metric

import (
	"github.com/MayerT1/FSH-Python3-Old/algorithms/stats"
	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"gonum.org/v1/gonum/mat"
)

// Result holds the statistics of one comparison and the paired values they
// were computed from.
type Result struct {
	R      float64   `json:"r"`
	RMSE   float64   `json:"rmse"`
	Bias   float64   `json:"bias"`
	PValue float64   `json:"p_value"`
	Count  int       `json:"count"`
	V1     []float64 `json:"-"`
	V2     []float64 `json:"-"`
}

// Filter narrows the valid pairs before the statistics are computed
type Filter func(v1, v2 []float64) ([]float64, []float64, error)

// ValidPairs walks g1 and g2 in row-major order and returns the paired
// values of every cell where both grids are strictly positive. Missing
// cells never qualify.
func ValidPairs(g1, g2 mat.Matrix) (v1, v2 []float64, err error) {
	r1, c1 := g1.Dims()
	r2, c2 := g2.Dims()
	if r1 != r2 || c1 != c2 {
		return nil, nil, errdefs.Format("mean-grid shapes differ: %dx%d vs %dx%d", r1, c1, r2, c2)
	}

	v1 = make([]float64, 0, r1*c1)
	v2 = make([]float64, 0, r1*c1)
	for i := 0; i < r1; i++ {
		for j := 0; j < c1; j++ {
			a, b := g1.At(i, j), g2.At(i, j)
			// NaN compares false
			if a > 0 && b > 0 {
				v1 = append(v1, a)
				v2 = append(v2, b)
			}
		}
	}
	return v1, v2, nil
}

// Compare masks the grids, applies filters in order, and computes R and
// RMSE. Either both statistics are returned or an error is.
func Compare(g1, g2 mat.Matrix, filters ...Filter) (*Result, error) {
	v1, v2, err := ValidPairs(g1, g2)
	if err != nil {
		return nil, err
	}

	for _, filter := range filters {
		v1, v2, err = filter(v1, v2)
		if err != nil {
			return nil, err
		}
	}

	return ComparePairs(v1, v2)
}

// ComparePairs computes the statistics of already-masked pairs
func ComparePairs(v1, v2 []float64) (*Result, error) {
	rmse, err := stats.RMSE(v1, v2)
	if err != nil {
		return nil, err
	}
	r, err := stats.Pearson(v1, v2)
	if err != nil {
		return nil, err
	}
	bias, err := stats.Bias(v1, v2)
	if err != nil {
		return nil, err
	}

	return &Result{
		R:      r,
		RMSE:   rmse,
		Bias:   bias,
		PValue: stats.CorrelationPValue(r, len(v1)),
		Count:  len(v1),
		V1:     v1,
		V2:     v2,
	}, nil
}
