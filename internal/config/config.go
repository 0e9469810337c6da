// Package config holds the display and acquisition settings, loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"orthoview/pkg/colorutil"

	"gopkg.in/yaml.v3"
)

// RGB is a color written as [r, g, b] in the settings file.
type RGB [3]uint8

// RGBA converts to an opaque color.
func (c RGB) RGBA() color.RGBA {
	return colorutil.RGB(c[0], c[1], c[2])
}

// Colors are the overlay colors.
type Colors struct {
	Beam          RGB `yaml:"beam"`
	Corner        RGB `yaml:"corner"`
	CurrentCorner RGB `yaml:"current_corner"`
	Grid          RGB `yaml:"grid"`
}

// Config holds runtime settings. Fields not present in the file keep
// their defaults.
type Config struct {
	Colors Colors `yaml:"colors"`

	// Alpha is the overlay weight when blending onto the frame.
	Alpha float64 `yaml:"alpha"`

	GridStepMM float64 `yaml:"grid_step_mm"`
	GridLines  int     `yaml:"grid_lines"`

	ShowBeam bool `yaml:"show_beam"`
	ShowRect bool `yaml:"show_rect"`

	// Camera is a device index ("0") or a device path.
	Camera  string        `yaml:"camera"`
	Refresh time.Duration `yaml:"refresh"`

	// MaxCanvas caps either side of the rectified canvas in pixels.
	MaxCanvas int `yaml:"max_canvas"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Colors: Colors{
			Beam:          colorutil.Triplet(colorutil.BeamMark),
			Corner:        colorutil.Triplet(colorutil.Corner),
			CurrentCorner: colorutil.Triplet(colorutil.CurrentCorner),
			Grid:          colorutil.Triplet(colorutil.Grid),
		},
		Alpha:      0.75,
		GridStepMM: 10,
		GridLines:  20,
		ShowBeam:   true,
		ShowRect:   true,
		Camera:     "0",
		Refresh:    500 * time.Millisecond,
		MaxCanvas:  8192,
	}
}

// Validate clamps values to safe ranges.
func (c *Config) Validate() {
	d := DefaultConfig()
	if c.Alpha < 0 || c.Alpha > 1 {
		c.Alpha = d.Alpha
	}
	if c.GridStepMM <= 0 {
		c.GridStepMM = d.GridStepMM
	}
	if c.GridLines < 0 {
		c.GridLines = d.GridLines
	}
	if c.Camera == "" {
		c.Camera = d.Camera
	}
	if c.Refresh < 10*time.Millisecond {
		c.Refresh = d.Refresh
	}
	if c.MaxCanvas <= 0 {
		c.MaxCanvas = d.MaxCanvas
	}
}

// Load reads settings from path on top of the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Validate()
	return cfg, nil
}

// Save writes the settings to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
