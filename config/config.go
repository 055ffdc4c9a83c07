// Package config loads scanner settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"puzzle-scanner/internal/scan"
	"puzzle-scanner/internal/sensitivity"
)

// Config is the environment-driven subset of the scanner settings.
type Config struct {
	Sensitivity sensitivity.Level
	TargetWidth int
	MaxPieces   int
}

// Load reads SCAN_SENSITIVITY, SCAN_WIDTH, and SCAN_MAX_PIECES from
// the environment. A missing .env file is not an error; unset
// variables fall back to the pipeline defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	def := scan.DefaultConfig()
	cfg := &Config{
		Sensitivity: def.Level,
		TargetWidth: def.TargetWidth,
		MaxPieces:   def.Filter.MaxPieces,
	}

	if v := os.Getenv("SCAN_SENSITIVITY"); v != "" {
		level, err := sensitivity.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("SCAN_SENSITIVITY: %w", err)
		}
		cfg.Sensitivity = level
	}
	if v := os.Getenv("SCAN_WIDTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 {
			return nil, fmt.Errorf("SCAN_WIDTH: invalid value %q", v)
		}
		cfg.TargetWidth = n
	}
	if v := os.Getenv("SCAN_MAX_PIECES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("SCAN_MAX_PIECES: invalid value %q", v)
		}
		cfg.MaxPieces = n
	}

	return cfg, nil
}

// ScanConfig converts the loaded settings into a pipeline config.
func (c *Config) ScanConfig() scan.Config {
	sc := scan.DefaultConfig()
	sc.Level = c.Sensitivity
	sc.TargetWidth = c.TargetWidth
	sc.Filter.MaxPieces = c.MaxPieces
	return sc
}
