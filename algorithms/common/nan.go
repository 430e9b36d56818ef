package common

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Missing is the missing-data marker carried through images and grids
var Missing = math.NaN()

// IsMissing reports whether v is the missing-data marker
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// NanMean averages the present values. ok is false when every value is
// missing (or data is empty); the mean is never reported as zero in that case.
func NanMean(data []float64) (mean float64, ok bool) {
	sum := 0.0
	count := 0
	for _, v := range data {
		if IsMissing(v) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return Missing, false
	}
	return sum / float64(count), true
}

// NanMeanOrMissing is NanMean collapsed to the missing-data marker
func NanMeanOrMissing(data []float64) float64 {
	mean, _ := NanMean(data)
	return mean
}

// MeanWithoutNaN is the NaN-aware mean over every element of m
func MeanWithoutNaN(m mat.Matrix) float64 {
	rows, cols := m.Dims()
	sum := 0.0
	count := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if IsMissing(v) {
				continue
			}
			sum += v
			count++
		}
	}
	if count == 0 {
		return Missing
	}
	return sum / float64(count)
}

// CountPresent counts the non-missing elements of m
func CountPresent(m mat.Matrix) int {
	rows, cols := m.Dims()
	count := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !IsMissing(m.At(i, j)) {
				count++
			}
		}
	}
	return count
}
