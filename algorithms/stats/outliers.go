package stats

import (
	"math"

	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"gonum.org/v1/gonum/stat"
)

// minOutlierBin is the smallest bin population that is screened; smaller
// bins pass through untouched.
const minOutlierBin = 3

// RemoveOutliers screens paired heights for outliers. Pairs are binned on v1
// in bins of width window; inside a bin a pair is dropped when its v2 lies
// more than threshold standard deviations from the bin's v2 mean. Surviving
// pairs keep their original order.
func RemoveOutliers(v1, v2 []float64, window, threshold float64) ([]float64, []float64, error) {
	if err := checkPaired(v1, v2); err != nil {
		return nil, nil, err
	}
	if !(window > 0) || math.IsInf(window, 0) {
		return nil, nil, errdefs.InvalidParameter("outlier window must be positive and finite, got %g", window)
	}
	if !(threshold > 0) {
		return nil, nil, errdefs.InvalidParameter("outlier threshold must be positive, got %g", threshold)
	}

	bins := make(map[int64][]int)
	for i, x := range v1 {
		key := int64(math.Floor(x / window))
		bins[key] = append(bins[key], i)
	}

	keep := make([]bool, len(v1))
	for _, members := range bins {
		if len(members) < minOutlierBin {
			for _, idx := range members {
				keep[idx] = true
			}
			continue
		}

		ys := make([]float64, len(members))
		for k, idx := range members {
			ys[k] = v2[idx]
		}
		mean, std := stat.MeanStdDev(ys, nil)

		for k, idx := range members {
			keep[idx] = math.Abs(ys[k]-mean) <= threshold*std
		}
	}

	out1 := make([]float64, 0, len(v1))
	out2 := make([]float64, 0, len(v2))
	for i, ok := range keep {
		if ok {
			out1 = append(out1, v1[i])
			out2 = append(out2, v2[i])
		}
	}
	return out1, out2, nil
}
