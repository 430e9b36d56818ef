package common

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// LinearTable is a piecewise-linear lookup over strictly increasing knots.
// Queries outside the knot range clamp to the end values.
type LinearTable struct {
	pl     interp.PiecewiseLinear
	lo, hi float64
}

// NewLinearTable builds a table from knot positions and values.
// The inputs are copied.
func NewLinearTable(xs, ys []float64) (*LinearTable, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("knot count mismatch: %d positions, %d values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("need at least 2 knots, got %d", len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, fmt.Errorf("knot positions must be strictly increasing at index %d", i)
		}
	}

	// Fit panics on the cases rejected above
	t := &LinearTable{lo: xs[0], hi: xs[len(xs)-1]}
	if err := t.pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit table: %w", err)
	}
	return t, nil
}

// At evaluates the table at x. NaN in gives NaN out.
func (t *LinearTable) At(x float64) float64 {
	if IsMissing(x) {
		return Missing
	}
	return t.pl.Predict(x)
}

// Domain returns the first and last knot positions
func (t *LinearTable) Domain() (lo, hi float64) {
	return t.lo, t.hi
}
