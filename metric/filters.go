package metric

import (
	"github.com/MayerT1/FSH-Python3-Old/algorithms/stats"
	"github.com/MayerT1/FSH-Python3-Old/errdefs"
)

// SaturationFilter drops pairs at the unreliable ends of the height range:
// either height below low, or a height within margin of its image's
// saturation height (maxHeight1, maxHeight2).
func SaturationFilter(low, margin, maxHeight1, maxHeight2 float64) Filter {
	return func(v1, v2 []float64) ([]float64, []float64, error) {
		if len(v1) != len(v2) {
			return nil, nil, errdefs.Format("paired sequences differ in length: %d vs %d", len(v1), len(v2))
		}

		out1 := make([]float64, 0, len(v1))
		out2 := make([]float64, 0, len(v2))
		for i := range v1 {
			a, b := v1[i], v2[i]
			if a < low || b < low {
				continue
			}
			if a > maxHeight1-margin || b > maxHeight2-margin {
				continue
			}
			out1 = append(out1, a)
			out2 = append(out2, b)
		}
		return out1, out2, nil
	}
}

// OutlierFilter wraps stats.RemoveOutliers
func OutlierFilter(window, threshold float64) Filter {
	return func(v1, v2 []float64) ([]float64, []float64, error) {
		return stats.RemoveOutliers(v1, v2, window, threshold)
	}
}
