package sceneio

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"github.com/ctessum/cdf"
	"gonum.org/v1/gonum/mat"
)

// PairWriter persists the valid-cell pairs of one comparison
type PairWriter interface {
	WritePairs(ctx context.Context, key string, v1, v2 []float64) (string, error)
}

// JSONPairWriter writes [v1, v2] as JSON under the pair-key file name
type JSONPairWriter struct {
	paths Paths
}

// NewJSONPairWriter writes into paths.Directory/paths.Subdir
func NewJSONPairWriter(paths Paths) *JSONPairWriter {
	return &JSONPairWriter{paths: paths}
}

// WritePairs writes the file through a temporary sibling and renames it into
// place, so readers never observe a partial file. It returns the final path.
func (w *JSONPairWriter) WritePairs(ctx context.Context, key string, v1, v2 []float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(v1) != len(v2) {
		return "", errdefs.Format("pair %s: paired sequences differ in length: %d vs %d", key, len(v1), len(v2))
	}
	for i := range v1 {
		if math.IsNaN(v1[i]) || math.IsNaN(v2[i]) || math.IsInf(v1[i], 0) || math.IsInf(v2[i], 0) {
			return "", errdefs.Format("pair %s: non-finite value at index %d", key, i)
		}
	}

	// encode empty sequences as [] rather than null
	if v1 == nil {
		v1 = []float64{}
	}
	if v2 == nil {
		v2 = []float64{}
	}
	payload, err := json.Marshal([2][]float64{v1, v2})
	if err != nil {
		return "", fmt.Errorf("pair %s: encoding pairs: %w", key, err)
	}

	path := w.paths.Pairs(key)
	if err := writeFileAtomic(path, payload); err != nil {
		return "", fmt.Errorf("pair %s: %w", key, err)
	}
	return path, nil
}

// ReadPairs loads a file written by JSONPairWriter
func ReadPairs(path string) (v1, v2 []float64, err error) {
	file, err := openInput(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var pairs [][]float64
	if err := json.NewDecoder(file).Decode(&pairs); err != nil {
		return nil, nil, errdefs.Format("decoding %s: %v", path, err)
	}
	if len(pairs) != 2 || len(pairs[0]) != len(pairs[1]) {
		return nil, nil, errdefs.Format("%s does not hold two equal-length lists", path)
	}
	return pairs[0], pairs[1], nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// WriteNetCDFPair writes pair to path in the layout NetCDFLoader reads.
// Missing values are stored as NaN.
func WriteNetCDFPair(path string, pair *ImagePair) error {
	return writeNetCDF(path, pair, nil)
}

// WriteNetCDFPairFill stores missing values as fill and records it in each
// variable's _FillValue attribute.
func WriteNetCDFPairFill(path string, pair *ImagePair, fill float64) error {
	return writeNetCDF(path, pair, &fill)
}

func writeNetCDF(path string, pair *ImagePair, fill *float64) error {
	if err := pair.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	dims := []string{"lines", "samples"}
	h := cdf.NewHeader(dims, []int{pair.Lines(), pair.Samples()})
	h.AddAttribute("", "pair", pair.Key)
	for _, name := range []string{VarImage1, VarImage2} {
		h.AddVariable(name, dims, []float64{0})
		if fill != nil {
			h.AddAttribute(name, "_FillValue", []float64{*fill})
		}
	}
	h.Define()

	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("creating netcdf %s: %w", path, err)
	}

	images := map[string]*mat.Dense{
		VarImage1: pair.I1,
		VarImage2: pair.I2,
	}
	for _, name := range []string{VarImage1, VarImage2} {
		data := rowMajor(images[name])
		if fill != nil {
			for i, v := range data {
				if math.IsNaN(v) {
					data[i] = *fill
				}
			}
		}

		end := f.Header.Lengths(name)
		start := make([]int, len(end))
		if _, err := f.Writer(name, start, end).Write(data); err != nil {
			return fmt.Errorf("writing variable %s to %s: %w", name, path, err)
		}
	}

	if err := cdf.UpdateNumRecs(w); err != nil {
		return err
	}
	return w.Close()
}

// rowMajor copies m into a fresh contiguous slice; m may be a strided view
func rowMajor(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		out = append(out, m.RawRowView(i)...)
	}
	return out
}
