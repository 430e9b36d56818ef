package pairwise

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MayerT1/FSH-Python3-Old/errdefs"
	"github.com/MayerT1/FSH-Python3-Old/sceneio"
)

// Config configures a Pipeline
type Config struct {
	// Square block edge used for spatial averaging
	BlockSize int `json:"block_size"`

	// Directory under the root holding inputs and outputs
	OutputSubdir string `json:"output_subdir"`

	// Input pair file layout: "netcdf" or "json"
	InputFormat sceneio.Format `json:"input_format"`

	SaturationFilter SaturationFilterConfig `json:"saturation_filter"`
	OutlierRemoval   OutlierRemovalConfig   `json:"outlier_removal"`

	// Minimum level of the pipeline logger ("debug", "info", ...); empty
	// leaves the logger as it is. The level is shared with the logger's parent.
	LogLevel string `json:"log_level,omitempty"`
}

// SaturationFilterConfig drops pairs at the low end of the height range and
// near the model's saturation height pi*C.
type SaturationFilterConfig struct {
	Enabled    bool    `json:"enabled"`
	LowCutoff  float64 `json:"low_cutoff"`
	HighMargin float64 `json:"high_margin"`
}

// OutlierRemovalConfig drives the binned outlier screen on valid pairs
type OutlierRemovalConfig struct {
	Enabled   bool    `json:"enabled"`
	Window    float64 `json:"window"`
	Threshold float64 `json:"threshold"`
}

// DefaultConfig returns the reference pipeline: both optional stages off
func DefaultConfig() *Config {
	return &Config{
		BlockSize:    10,
		OutputSubdir: sceneio.DefaultSubdir,
		InputFormat:  sceneio.FormatNetCDF,
		SaturationFilter: SaturationFilterConfig{
			Enabled:    false,
			LowCutoff:  5,
			HighMargin: 1,
		},
		OutlierRemoval: OutlierRemovalConfig{
			Enabled:   false,
			Window:    0.5,
			Threshold: 2,
		},
	}
}

// Validate reports the first unusable setting
func (c *Config) Validate() error {
	if c.BlockSize < 1 {
		return errdefs.InvalidParameter("block size must be at least 1, got %d", c.BlockSize)
	}
	if _, err := sceneio.ParseFormat(string(c.InputFormat)); err != nil {
		return err
	}
	if c.OutlierRemoval.Enabled {
		if !(c.OutlierRemoval.Window > 0) {
			return errdefs.InvalidParameter("outlier window must be positive, got %g", c.OutlierRemoval.Window)
		}
		if !(c.OutlierRemoval.Threshold > 0) {
			return errdefs.InvalidParameter("outlier threshold must be positive, got %g", c.OutlierRemoval.Threshold)
		}
	}
	if c.SaturationFilter.Enabled && c.SaturationFilter.HighMargin < 0 {
		return errdefs.InvalidParameter("saturation margin must not be negative, got %g", c.SaturationFilter.HighMargin)
	}
	return nil
}

// LoadConfig reads a JSON config file. Fields absent from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	format, err := sceneio.ParseFormat(string(cfg.InputFormat))
	if err != nil {
		return nil, err
	}
	cfg.InputFormat = format

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
