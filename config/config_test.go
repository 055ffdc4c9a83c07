package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"puzzle-scanner/internal/sensitivity"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SCAN_SENSITIVITY", "")
	t.Setenv("SCAN_WIDTH", "")
	t.Setenv("SCAN_MAX_PIECES", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, sensitivity.Medium, cfg.Sensitivity)
	require.Equal(t, 640, cfg.TargetWidth)
	require.Greater(t, cfg.MaxPieces, 0)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SCAN_SENSITIVITY", "high")
	t.Setenv("SCAN_WIDTH", "960")
	t.Setenv("SCAN_MAX_PIECES", "24")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, sensitivity.High, cfg.Sensitivity)
	require.Equal(t, 960, cfg.TargetWidth)
	require.Equal(t, 24, cfg.MaxPieces)

	sc := cfg.ScanConfig()
	require.Equal(t, sensitivity.High, sc.Level)
	require.Equal(t, 960, sc.TargetWidth)
	require.Equal(t, 24, sc.Filter.MaxPieces)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SCAN_SENSITIVITY", "extreme")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("SCAN_SENSITIVITY", "low")
	t.Setenv("SCAN_WIDTH", "ten")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("SCAN_WIDTH", "640")
	t.Setenv("SCAN_MAX_PIECES", "0")
	_, err = Load()
	require.Error(t, err)
}
