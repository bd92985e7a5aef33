// Package config loads the experiment configuration: display geometry,
// default frame rate, calibration correction, and service settings. Fields
// omitted from the JSON file retain their defaults, so partial configs are
// safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/strobe-lab/loomstim/internal/units"
)

// ExperimentConfig is the root configuration. The schema matches the
// /api/config endpoint so the same JSON serves startup configuration and
// runtime inspection.
type ExperimentConfig struct {
	// Display params
	FrameRate        *float64 `json:"frame_rate,omitempty"`
	ScreenDistance   *float64 `json:"screen_distance,omitempty"`
	CorrectionFactor *float64 `json:"correction_factor,omitempty"`
	ScreenWidth      *int     `json:"screen_width,omitempty"`
	ScreenHeight     *int     `json:"screen_height,omitempty"`

	// Annotation params
	DotsInterval *int `json:"dots_interval,omitempty"`

	// Reporting params
	AngularUnits *string `json:"angular_units,omitempty"`
	SpeedUnits   *string `json:"speed_units,omitempty"`

	// Service params
	DBPath        *string `json:"db_path,omitempty"`
	MigrationsDir *string `json:"migrations_dir,omitempty"`
	TriggerPort   *string `json:"trigger_port,omitempty"`
}

// EmptyConfig returns an ExperimentConfig with all fields unset.
func EmptyConfig() *ExperimentConfig {
	return &ExperimentConfig{}
}

// Load reads an ExperimentConfig from a JSON file. The file must have a
// .json extension and stay under the max file size.
func Load(path string) (*ExperimentConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *ExperimentConfig) Validate() error {
	if c.FrameRate != nil && *c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %f", *c.FrameRate)
	}
	if c.ScreenDistance != nil && *c.ScreenDistance <= 0 {
		return fmt.Errorf("screen_distance must be positive, got %f", *c.ScreenDistance)
	}
	if c.CorrectionFactor != nil && *c.CorrectionFactor < 0 {
		return fmt.Errorf("correction_factor must be non-negative, got %f", *c.CorrectionFactor)
	}
	if c.DotsInterval != nil && *c.DotsInterval < 0 {
		return fmt.Errorf("dots_interval must be non-negative, got %d", *c.DotsInterval)
	}
	if c.AngularUnits != nil && !units.IsValidAngular(*c.AngularUnits) {
		return fmt.Errorf("invalid angular_units %q (valid: %s)", *c.AngularUnits, units.GetValidAngularUnitsString())
	}
	if c.SpeedUnits != nil && !units.IsValidSpeed(*c.SpeedUnits) {
		return fmt.Errorf("invalid speed_units %q (valid: %s)", *c.SpeedUnits, units.GetValidSpeedUnitsString())
	}
	return nil
}

// GetFrameRate returns the frame_rate value or the default.
func (c *ExperimentConfig) GetFrameRate() float64 {
	if c.FrameRate == nil {
		return 60 // default
	}
	return *c.FrameRate
}

// GetScreenDistance returns the screen_distance value or the default.
func (c *ExperimentConfig) GetScreenDistance() float64 {
	if c.ScreenDistance == nil {
		return 20 // default: tank wall to screen, cm
	}
	return *c.ScreenDistance
}

// GetCorrectionFactor returns the correction_factor value or the default.
func (c *ExperimentConfig) GetCorrectionFactor() float64 {
	if c.CorrectionFactor == nil {
		return 0 // default: no display correction
	}
	return *c.CorrectionFactor
}

// GetScreenWidth returns the screen_width value or the default.
func (c *ExperimentConfig) GetScreenWidth() int {
	if c.ScreenWidth == nil {
		return 1920
	}
	return *c.ScreenWidth
}

// GetScreenHeight returns the screen_height value or the default.
func (c *ExperimentConfig) GetScreenHeight() int {
	if c.ScreenHeight == nil {
		return 1080
	}
	return *c.ScreenHeight
}

// GetDotsInterval returns the dots_interval value or the default.
func (c *ExperimentConfig) GetDotsInterval() int {
	if c.DotsInterval == nil {
		return 20
	}
	return *c.DotsInterval
}

// GetAngularUnits returns the angular_units value or the default.
func (c *ExperimentConfig) GetAngularUnits() string {
	if c.AngularUnits == nil {
		return units.RadPerSec
	}
	return *c.AngularUnits
}

// GetSpeedUnits returns the speed_units value or the default.
func (c *ExperimentConfig) GetSpeedUnits() string {
	if c.SpeedUnits == nil {
		return units.CMS
	}
	return *c.SpeedUnits
}

// GetDBPath returns the db_path value or the default.
func (c *ExperimentConfig) GetDBPath() string {
	if c.DBPath == nil {
		return "loomstim.db"
	}
	return *c.DBPath
}

// GetMigrationsDir returns the migrations_dir value or the default.
func (c *ExperimentConfig) GetMigrationsDir() string {
	if c.MigrationsDir == nil {
		return "db/migrations"
	}
	return *c.MigrationsDir
}

// GetTriggerPort returns the trigger_port value or the default.
func (c *ExperimentConfig) GetTriggerPort() string {
	if c.TriggerPort == nil {
		return "/dev/ttyUSB0"
	}
	return *c.TriggerPort
}
