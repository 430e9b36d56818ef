// Package grid reduces an image to a coarser grid of square block means.
package grid

import (
	"github.com/MayerT1/FSH-Python3-Old/algorithms/common"
	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"gonum.org/v1/gonum/mat"
)

// Layout describes how an image of Rows x Cols is cut into BlockSize-square
// blocks. Rows and columns past the last whole block are discarded.
type Layout struct {
	Rows      int `json:"rows"`
	Cols      int `json:"cols"`
	BlockSize int `json:"block_size"`
	BlockRows int `json:"block_rows"`
	BlockCols int `json:"block_cols"`
}

// NewLayout computes the block grid for a rows x cols image. It fails with
// ErrInvalidParameter when n < 1 or the grid would have no rows or columns.
func NewLayout(rows, cols, n int) (Layout, error) {
	if n < 1 {
		return Layout{}, errdefs.InvalidParameter("block size must be at least 1, got %d", n)
	}

	l := Layout{
		Rows:      rows,
		Cols:      cols,
		BlockSize: n,
		BlockRows: rows / n,
		BlockCols: cols / n,
	}
	if l.BlockRows == 0 || l.BlockCols == 0 {
		return Layout{}, errdefs.InvalidParameter("block size %d exceeds image dimensions %dx%d", n, rows, cols)
	}
	return l, nil
}

// DiscardedRows is the number of trailing rows dropped by the trim
func (l Layout) DiscardedRows() int {
	return l.Rows - l.BlockRows*l.BlockSize
}

// DiscardedCols is the number of trailing columns dropped by the trim
func (l Layout) DiscardedCols() int {
	return l.Cols - l.BlockCols*l.BlockSize
}

// Trim returns the top-left view of img covered by whole blocks. The view
// shares storage with img.
func Trim(img *mat.Dense, n int) (mat.Matrix, Layout, error) {
	rows, cols := img.Dims()
	l, err := NewLayout(rows, cols, n)
	if err != nil {
		return nil, Layout{}, err
	}
	return img.Slice(0, l.BlockRows*n, 0, l.BlockCols*n), l, nil
}

// BlockMeans trims img to whole blocks of n x n and returns the grid of
// NaN-aware block means in row-major block order. A block with no present
// values is the missing-data marker. img is not modified.
func BlockMeans(img *mat.Dense, n int) (*mat.Dense, error) {
	trimmed, l, err := Trim(img, n)
	if err != nil {
		return nil, err
	}

	means := mat.NewDense(l.BlockRows, l.BlockCols, nil)
	block := make([]float64, 0, n*n)

	for bi := 0; bi < l.BlockRows; bi++ {
		for bj := 0; bj < l.BlockCols; bj++ {
			block = block[:0]
			for i := bi * n; i < (bi+1)*n; i++ {
				for j := bj * n; j < (bj+1)*n; j++ {
					block = append(block, trimmed.At(i, j))
				}
			}
			means.Set(bi, bj, common.NanMeanOrMissing(block))
		}
	}
	return means, nil
}
