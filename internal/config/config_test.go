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
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 120, cfg.Pool.TimeoutSecs)
	assert.Equal(t, 30, cfg.Pool.CacheTTLMinutes)
	assert.Equal(t, 2, cfg.Pool.MaxRetries)
	assert.Equal(t, 25, cfg.Comps.Limit)
	assert.Equal(t, 1, cfg.Comps.Filter.BedroomTolerance)
	assert.InDelta(t, 1.0, cfg.Comps.Filter.BathroomTolerance, 0.001)
	assert.InDelta(t, 0.75, cfg.Comps.Filter.AreaLowerRatio, 0.001)
	assert.InDelta(t, 1.25, cfg.Comps.Filter.AreaUpperRatio, 0.001)
	assert.Equal(t, 20, cfg.Comps.Filter.MaxYearDelta)
	assert.Equal(t, 100, cfg.Comps.Filter.MaxZipDelta)
	assert.InDelta(t, 1.0, cfg.Comps.Filter.MaxRadiusMiles, 0.001)
	assert.Equal(t, []string{"NC", "SC"}, cfg.Comps.Filter.StateEquivalents)
	assert.Equal(t, "https://api.mlsgrid.com/v2/Property", cfg.Geocode.MLSGridURL)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Summary.Model)
	assert.Equal(t, int64(1024), cfg.Summary.MaxTokens)
	assert.InDelta(t, 0.4, cfg.Summary.Temperature, 0.001)
	assert.Equal(t, 30, cfg.Backend.TimeoutSecs)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/valuation
pool:
  url: https://example.com/mls-data
  cache_ttl_minutes: 5
comps:
  limit: 10
  filter:
    max_radius_miles: 2.5
    state_equivalents: ["VA", "MD"]
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/valuation", cfg.Store.DatabaseURL)
	assert.Equal(t, "https://example.com/mls-data", cfg.Pool.URL)
	assert.Equal(t, 5, cfg.Pool.CacheTTLMinutes)
	assert.Equal(t, 10, cfg.Comps.Limit)
	assert.InDelta(t, 2.5, cfg.Comps.Filter.MaxRadiusMiles, 0.001)
	assert.Equal(t, []string{"VA", "MD"}, cfg.Comps.Filter.StateEquivalents)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)

	// Defaults still apply for untouched keys.
	assert.Equal(t, 120, cfg.Pool.TimeoutSecs)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("VALUATION_POOL_URL", "https://feed.example.com/items")
	t.Setenv("VALUATION_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://feed.example.com/items", cfg.Pool.URL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())

	err := InitLogger(LogConfig{Level: "not-a-level"})
	require.Error(t, err)
}
