package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "sbmm.db", cfg.Store.SQLitePath)
	assert.Equal(t, 3, cfg.Store.SaveAttempts)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, "samples-2025.json", cfg.Data.Samples2025)
	assert.Equal(t, "soil-borings-2025.json", cfg.Data.SoilBorings2025)
	assert.Equal(t, "default", cfg.Planning.Plan)
	assert.Equal(t, "view", cfg.Planning.Mode)
	assert.InDelta(t, 0.00015, cfg.Labels.OffsetDeg, 1e-12)
	assert.InDelta(t, 0.8, cfg.Labels.MinSeparation, 1e-9)
	assert.Equal(t, 3, cfg.Labels.MaxMultiplier)
	assert.InDelta(t, 50, cfg.Analysis.GridSizeFt, 1e-9)
	assert.InDelta(t, 111000, cfg.Analysis.MetersPerDegLat, 1e-9)
	assert.InDelta(t, 86000, cfg.Analysis.MetersPerDegLon, 1e-9)
	assert.True(t, cfg.Analysis.IncludePlanned)
	assert.Equal(t, "Mercury", cfg.Analysis.Analyte)
	assert.Equal(t, "SBMM_Planned_", cfg.Export.FilePrefix)
	assert.Equal(t, "SBMM Round 2 Planned Locations", cfg.Export.ClipboardTitle)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: memory
log:
  level: debug
  format: console
labels:
  offset_deg: 0.0002
planning:
  plan: round2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, 0.0002, cfg.Labels.OffsetDeg, 1e-12)
	assert.Equal(t, "round2", cfg.Planning.Plan)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Labels.MaxMultiplier)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SBMM_STORE_DRIVER", "postgres")
	t.Setenv("SBMM_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("SBMM_DATA_DIR", "/srv/sbmm")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/sbmm", cfg.Data.Dir)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLitePath = "sbmm.db"
	cfg.Store.MaxConns = 4
	cfg.Store.MinConns = 1
	cfg.Planning.Plan = "default"
	cfg.Labels.OffsetDeg = 0.00015
	cfg.Labels.MinSeparation = 0.8
	cfg.Labels.MaxMultiplier = 3
	cfg.Analysis.GridSizeFt = 50
	cfg.Analysis.MinGridSizeFt = 25
	cfg.Analysis.MaxGridSizeFt = 100
	cfg.Analysis.MetersPerDegLat = 111000
	cfg.Analysis.MetersPerDegLon = 86000
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate())
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be one of")
}

func TestValidate_PostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/sbmm"
	assert.NoError(t, cfg.Validate())

	cfg.Store.MinConns = 10
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_conns")
}

func TestValidate_MemoryNeedsNothing(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "memory"
	cfg.Store.SQLitePath = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidate_LabelBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Labels.OffsetDeg = 0
	cfg.Labels.MaxMultiplier = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "labels.offset_deg must be > 0")
	assert.Contains(t, err.Error(), "labels.max_multiplier must be >= 1")
}

func TestValidate_GridBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Analysis.GridSizeFt = 150

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "grid_size_ft must be within")

	cfg.Analysis.GridSizeFt = 50
	cfg.Analysis.MaxGridSizeFt = 10
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "grid bounds")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "nope"
	cfg.Planning.Plan = ""
	cfg.Analysis.MetersPerDegLon = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
	assert.Contains(t, err.Error(), "planning.plan is required")
	assert.Contains(t, err.Error(), "meters_per_deg")
}
