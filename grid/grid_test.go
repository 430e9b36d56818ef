package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"gonum.org/v1/gonum/mat"
)

func sequential(rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i + 1)
	}
	return mat.NewDense(rows, cols, data)
}

func TestBlockSizeOneIsIdentity(t *testing.T) {
	img := sequential(3, 5)

	means, err := BlockMeans(img, 1)
	if err != nil {
		t.Fatalf("BlockMeans: %v", err)
	}
	if !mat.Equal(means, img) {
		t.Fatalf("expected identity, got\n%v", mat.Formatted(means))
	}
}

func TestAllMissingGivesAllMissing(t *testing.T) {
	for _, n := range []int{1, 2, 3} {
		img := mat.NewDense(6, 6, nil)
		for i := 0; i < 6; i++ {
			for j := 0; j < 6; j++ {
				img.Set(i, j, math.NaN())
			}
		}

		means, err := BlockMeans(img, n)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		r, c := means.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if !math.IsNaN(means.At(i, j)) {
					t.Fatalf("n=%d: cell (%d,%d) = %v, want NaN", n, i, j, means.At(i, j))
				}
			}
		}
	}
}

func TestTrailingTrim(t *testing.T) {
	// 7x7 with N=3 keeps rows/cols 0..5; row 6 and col 6 carry a huge value
	img := mat.NewDense(7, 7, nil)
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			if i == 6 || j == 6 {
				img.Set(i, j, 1e9)
			} else {
				img.Set(i, j, float64(i*10+j))
			}
		}
	}

	means, err := BlockMeans(img, 3)
	if err != nil {
		t.Fatalf("BlockMeans: %v", err)
	}
	if r, c := means.Dims(); r != 2 || c != 2 {
		t.Fatalf("expected 2x2 grid, got %dx%d", r, c)
	}

	// block (bi,bj) mean of i*10+j over its 3x3 cells
	want := mat.NewDense(2, 2, []float64{11, 14, 41, 44})
	if !mat.EqualApprox(means, want, 1e-12) {
		t.Fatalf("unexpected means\n%v", mat.Formatted(means))
	}
}

func TestLayout(t *testing.T) {
	l, err := NewLayout(7, 10, 3)
	if err != nil {
		t.Fatal(err)
	}
	if l.BlockRows != 2 || l.BlockCols != 3 {
		t.Fatalf("unexpected layout %+v", l)
	}
	if l.DiscardedRows() != 1 || l.DiscardedCols() != 1 {
		t.Fatalf("unexpected discards %d, %d", l.DiscardedRows(), l.DiscardedCols())
	}
}

func TestNaNAwareBlockMean(t *testing.T) {
	nan := math.NaN()
	img := mat.NewDense(2, 4, []float64{
		1, nan, nan, nan,
		3, nan, nan, nan,
	})

	means, err := BlockMeans(img, 2)
	if err != nil {
		t.Fatal(err)
	}
	if means.At(0, 0) != 2 {
		t.Fatalf("partial block mean = %v, want 2", means.At(0, 0))
	}
	if !math.IsNaN(means.At(0, 1)) {
		t.Fatalf("empty block = %v, want NaN", means.At(0, 1))
	}
}

func TestInvalidBlockSize(t *testing.T) {
	img := sequential(4, 6)
	for _, n := range []int{-1, 0, 5, 7} {
		_, err := BlockMeans(img, n)
		if !errors.Is(err, errdefs.ErrInvalidParameter) {
			t.Errorf("n=%d: expected ErrInvalidParameter, got %v", n, err)
		}
	}
}

func TestBlockMeansDoesNotModifyInput(t *testing.T) {
	img := sequential(4, 4)
	before := mat.DenseCopyOf(img)
	if _, err := BlockMeans(img, 2); err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(img, before) {
		t.Fatal("input modified")
	}
}
