// Package sceneio reads the per-pair image files and writes the paired
// valid-cell values used for scatter plots.
package sceneio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"gonum.org/v1/gonum/mat"
)

// Variable names of the two images inside a pair file
const (
	VarImage1 = "I1"
	VarImage2 = "I2"
)

// DefaultSubdir is the directory under the root holding pair files
const DefaultSubdir = "output"

// pairsSuffix is appended to the pair key for the scatter-plot output
const pairsSuffix = "_I1andI2.json"

// Format selects the on-disk layout of input pair files
type Format string

const (
	// FormatNetCDF stores I1 and I2 as 2D variables of a NetCDF classic file
	FormatNetCDF Format = "netcdf"

	// FormatJSON stores [I1, I2] as nested JSON lists, null for missing
	FormatJSON Format = "json"
)

// Extension returns the file extension for f
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	default:
		return ".nc"
	}
}

// ParseFormat accepts "netcdf"/"nc" and "json"; empty selects NetCDF
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "netcdf", "nc", "cdf":
		return FormatNetCDF, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errdefs.InvalidParameter("unknown input format %q", name)
	}
}

// PairKey names a scene pair as "{scene1}_{scene2}"
func PairKey(scene1, scene2 string) string {
	return scene1 + "_" + scene2
}

// Paths resolves file locations for pair keys
type Paths struct {
	Directory string
	Subdir    string
}

// NewPaths uses DefaultSubdir when subdir is empty
func NewPaths(directory, subdir string) Paths {
	if subdir == "" {
		subdir = DefaultSubdir
	}
	return Paths{Directory: directory, Subdir: subdir}
}

// Input is the pair file for key in format f
func (p Paths) Input(key string, f Format) string {
	return filepath.Join(p.Directory, p.Subdir, key+f.Extension())
}

// Pairs is the scatter-plot output file for key
func (p Paths) Pairs(key string) string {
	return filepath.Join(p.Directory, p.Subdir, key+pairsSuffix)
}

// ImagePair is the two co-registered raw images of a scene pair
type ImagePair struct {
	Key string
	I1  *mat.Dense
	I2  *mat.Dense
}

// Validate checks that both images exist, are non-empty and share a shape
func (p *ImagePair) Validate() error {
	if p.I1 == nil || p.I2 == nil {
		return errdefs.Format("pair %s: missing image", p.Key)
	}
	r1, c1 := p.I1.Dims()
	r2, c2 := p.I2.Dims()
	if r1 != r2 || c1 != c2 {
		return errdefs.Format("pair %s: image shapes differ: %dx%d vs %dx%d", p.Key, r1, c1, r2, c2)
	}
	return nil
}

// Lines and Samples return the shared image dimensions
func (p *ImagePair) Lines() int {
	r, _ := p.I1.Dims()
	return r
}

func (p *ImagePair) Samples() int {
	_, c := p.I1.Dims()
	return c
}

func (p *ImagePair) String() string {
	return fmt.Sprintf("%s (%dx%d)", p.Key, p.Lines(), p.Samples())
}
