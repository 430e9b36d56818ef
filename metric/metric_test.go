package metric

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"gonum.org/v1/gonum/mat"
)

func TestValidPairsScenario(t *testing.T) {
	g1 := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	g2 := mat.NewDense(2, 2, []float64{1, 2, 3, 5})

	res, err := Compare(g1, g2)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if !slices.Equal(res.V1, []float64{1, 2, 3, 4}) || !slices.Equal(res.V2, []float64{1, 2, 3, 5}) {
		t.Fatalf("unexpected pairs %v %v", res.V1, res.V2)
	}
	if res.RMSE != 0.5 {
		t.Fatalf("RMSE = %v, want 0.5", res.RMSE)
	}
	wantR := 6.5 / math.Sqrt(5*8.75)
	if math.Abs(res.R-wantR) > 1e-12 {
		t.Fatalf("R = %v, want %v", res.R, wantR)
	}
	if res.Count != 4 {
		t.Fatalf("Count = %d", res.Count)
	}
	if res.Bias != -0.25 {
		t.Fatalf("Bias = %v, want -0.25", res.Bias)
	}
}

func TestValidPairsExcludesNonPositive(t *testing.T) {
	nan := math.NaN()
	g1 := mat.NewDense(2, 3, []float64{
		5, -1, 7,
		0, 2, nan,
	})
	g2 := mat.NewDense(2, 3, []float64{
		6, 9, 0,
		4, 3, 8,
	})

	v1, v2, err := ValidPairs(g1, g2)
	if err != nil {
		t.Fatal(err)
	}
	// only (0,0) and (1,1) have both strictly positive
	if !slices.Equal(v1, []float64{5, 2}) || !slices.Equal(v2, []float64{6, 3}) {
		t.Fatalf("unexpected pairs %v %v", v1, v2)
	}
}

func TestValidPairsShapeMismatch(t *testing.T) {
	_, _, err := ValidPairs(mat.NewDense(2, 2, nil), mat.NewDense(2, 3, nil))
	if !errors.Is(err, errdefs.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestCompareFailsWithoutEnoughCells(t *testing.T) {
	g1 := mat.NewDense(1, 2, []float64{4, -1})
	g2 := mat.NewDense(1, 2, []float64{5, 2})

	res, err := Compare(g1, g2)
	if !errors.Is(err, errdefs.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if res != nil {
		t.Fatal("no partial result on failure")
	}

	none := mat.NewDense(1, 2, []float64{-1, 0})
	if _, err := Compare(none, g2); !errors.Is(err, errdefs.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for empty set, got %v", err)
	}
}

func TestIdenticalGridsHaveZeroError(t *testing.T) {
	g := mat.NewDense(2, 2, []float64{1.5, 8, 3.25, 12})
	res, err := Compare(g, g)
	if err != nil {
		t.Fatal(err)
	}
	if res.RMSE != 0 {
		t.Fatalf("RMSE = %v, want 0", res.RMSE)
	}
	if math.Abs(res.R-1) > 1e-12 {
		t.Fatalf("R = %v, want 1", res.R)
	}
}

func TestCompareAppliesFilters(t *testing.T) {
	g1 := mat.NewDense(1, 5, []float64{2, 10, 20, 30, 40})
	g2 := mat.NewDense(1, 5, []float64{3, 11, 22, 29, 39})

	// low cutoff 5 removes the first pair; saturation at 40 - 1 removes the last
	res, err := Compare(g1, g2, SaturationFilter(5, 1, 40, 40))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(res.V1, []float64{10, 20, 30}) {
		t.Fatalf("unexpected survivors %v", res.V1)
	}
}

func TestCompareFilterError(t *testing.T) {
	g := mat.NewDense(1, 3, []float64{1, 2, 3})
	boom := errors.New("boom")
	failing := func(v1, v2 []float64) ([]float64, []float64, error) { return nil, nil, boom }

	if _, err := Compare(g, g, failing); !errors.Is(err, boom) {
		t.Fatalf("expected filter error, got %v", err)
	}
}

func TestOutlierFilter(t *testing.T) {
	v1 := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	v2 := []float64{5, 5.1, 4.9, 5, 5.2, 4.8, 5, 5.1, 40}

	out1, _, err := OutlierFilter(10, 2)(v1, v2)
	if err != nil {
		t.Fatal(err)
	}
	if len(out1) != 8 {
		t.Fatalf("expected 8 survivors, got %d", len(out1))
	}
}
