package sceneio

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"os"
	"slices"

	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"github.com/ctessum/cdf"
	"gonum.org/v1/gonum/mat"
)

// Loader reads the image pair stored under a pair key
type Loader interface {
	Load(ctx context.Context, key string) (*ImagePair, error)
}

// NewLoader returns the loader for format f rooted at paths
func NewLoader(paths Paths, f Format) Loader {
	if f == FormatJSON {
		return &JSONLoader{paths: paths}
	}
	return &NetCDFLoader{paths: paths}
}

// NetCDFLoader reads I1 and I2 from a NetCDF classic file
type NetCDFLoader struct {
	paths Paths
}

func (l *NetCDFLoader) Load(ctx context.Context, key string) (*ImagePair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadNetCDFPair(l.paths.Input(key, FormatNetCDF), key)
}

// ReadNetCDFPair reads the pair file at path. Values equal to a variable's
// _FillValue attribute become missing.
func ReadNetCDFPair(path, key string) (*ImagePair, error) {
	file, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := cdf.Open(file)
	if err != nil {
		return nil, errdefs.Format("pair %s: reading netcdf %s: %v", key, path, err)
	}

	pair := &ImagePair{Key: key}
	if pair.I1, err = readVariable(f, VarImage1); err != nil {
		return nil, errdefs.Format("pair %s: %v", key, err)
	}
	if pair.I2, err = readVariable(f, VarImage2); err != nil {
		return nil, errdefs.Format("pair %s: %v", key, err)
	}
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	return pair, nil
}

func readVariable(f *cdf.File, name string) (*mat.Dense, error) {
	if !slices.Contains(f.Header.Variables(), name) {
		return nil, errors.New("variable " + name + " not found")
	}

	dims := f.Header.Lengths(name)
	if len(dims) != 2 || dims[0] <= 0 || dims[1] <= 0 {
		return nil, errors.New("variable " + name + " is not a non-empty 2D matrix")
	}
	n := dims[0] * dims[1]

	r := f.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}

	data := make([]float64, n)
	switch v := buf.(type) {
	case []float64:
		copy(data, v)
	case []float32:
		for i, x := range v {
			data[i] = float64(x)
		}
	case []int32:
		for i, x := range v {
			data[i] = float64(x)
		}
	case []int16:
		for i, x := range v {
			data[i] = float64(x)
		}
	default:
		return nil, errors.New("variable " + name + " has a non-numeric type")
	}

	if fill, ok := fillValue(f, name); ok {
		for i, x := range data {
			if x == fill {
				data[i] = math.NaN()
			}
		}
	}

	return mat.NewDense(dims[0], dims[1], data), nil
}

func fillValue(f *cdf.File, name string) (float64, bool) {
	switch v := f.Header.GetAttribute(name, "_FillValue").(type) {
	case []float64:
		if len(v) > 0 && !math.IsNaN(v[0]) {
			return v[0], true
		}
	case []float32:
		if len(v) > 0 && !math.IsNaN(float64(v[0])) {
			return float64(v[0]), true
		}
	}
	return 0, false
}

// JSONLoader reads the legacy [I1, I2] nested-list layout
type JSONLoader struct {
	paths Paths
}

func (l *JSONLoader) Load(ctx context.Context, key string) (*ImagePair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadJSONPair(l.paths.Input(key, FormatJSON), key)
}

// ReadJSONPair reads a pair stored as [I1, I2]; null elements are missing
func ReadJSONPair(path, key string) (*ImagePair, error) {
	file, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var images [][][]*float64
	if err := json.NewDecoder(file).Decode(&images); err != nil {
		return nil, errdefs.Format("pair %s: decoding %s: %v", key, path, err)
	}
	if len(images) != 2 {
		return nil, errdefs.Format("pair %s: expected 2 images, found %d", key, len(images))
	}

	pair := &ImagePair{Key: key}
	if pair.I1, err = denseFromRows(images[0]); err != nil {
		return nil, errdefs.Format("pair %s: %s: %v", key, VarImage1, err)
	}
	if pair.I2, err = denseFromRows(images[1]); err != nil {
		return nil, errdefs.Format("pair %s: %s: %v", key, VarImage2, err)
	}
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	return pair, nil
}

func denseFromRows(rows [][]*float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("empty matrix")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			return nil, errors.New("ragged rows")
		}
		for _, v := range row {
			if v == nil {
				data = append(data, math.NaN())
			} else {
				data = append(data, *v)
			}
		}
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func openInput(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errdefs.NotFound("%s", path)
		}
		return nil, errdefs.NotFound("%s: %v", path, err)
	}
	return file, nil
}
