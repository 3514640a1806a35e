package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Sim.TickMs)
	assert.Equal(t, 4, cfg.Sim.DetectionBatchSize)
	assert.Equal(t, 150, cfg.Sim.SampleIntervalMs)
	assert.Zero(t, cfg.Sim.Duration)
	assert.True(t, cfg.Sim.RealTime)
	assert.Equal(t, 5*time.Second, cfg.Sim.StatusEvery)
	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.False(t, cfg.Log.Debug)
}

func TestLoad_OverridesFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
sim:
  tick_ms: 20
  detection_batch_size: 8
  duration: 30s
  real_time: false
data:
  dir: /tmp/nightwatch
log:
  debug: true
`))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Sim.TickMs)
	assert.Equal(t, 8, cfg.Sim.DetectionBatchSize)
	assert.Equal(t, 30*time.Second, cfg.Sim.Duration)
	assert.False(t, cfg.Sim.RealTime)
	assert.Equal(t, "/tmp/nightwatch", cfg.Data.Dir)
	assert.True(t, cfg.Log.Debug)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
