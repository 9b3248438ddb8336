package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, 4, cfg.Execution.Concurrency)
	assert.Equal(t, 3, cfg.Execution.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Execution.RetryBaseDelay)
	assert.Equal(t, 1000, cfg.Execution.DeleteBatchSize)
	assert.NotEmpty(t, cfg.History.Path)
	assert.Equal(t, 100, cfg.History.Keep)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  output: stdout
history:
  path: /tmp/edfm-history
  keep: 10
metrics:
  enabled: true
execution:
  concurrency: 8
  max_attempts: 5
  delete_batch_size: 500
backends:
  - name: scratch
    type: memory
  - name: archive
    type: s3
    options:
      bucket: my-bucket
      region: eu-west-1
profiles:
  - name: work
    backend: scratch
    root: projects
    read_only: true
    requests_per_second: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "/tmp/edfm-history", cfg.History.Path)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 8, cfg.Execution.Concurrency)
	assert.Equal(t, 500, cfg.Execution.DeleteBatchSize)

	require.Len(t, cfg.Backends, 2)
	assert.Equal(t, "s3", cfg.Backends[1].Type)
	assert.Equal(t, "my-bucket", cfg.Backends[1].Options["bucket"])

	require.Len(t, cfg.Profiles, 1)
	assert.Equal(t, "scratch", cfg.Profiles[0].Backend)
	assert.True(t, cfg.Profiles[0].ReadOnly)
	assert.Equal(t, uint(20), cfg.Profiles[0].RequestsPerSecond)
}

func TestLoadDefaultsProfilePerBackend(t *testing.T) {
	path := writeConfig(t, `
backends:
  - name: scratch
    type: memory
  - name: local
    type: localfs
    options:
      root: /tmp/edfm-test
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Profiles, 2)
	assert.Equal(t, "scratch", cfg.Profiles[0].Name)
	assert.Equal(t, "scratch", cfg.Profiles[0].Backend)
	assert.Equal(t, "local", cfg.Profiles[1].Name)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := writeConfig(t, "backends: [not: {valid")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidBackendType(t *testing.T) {
	path := writeConfig(t, `
backends:
  - name: weird
    type: carrier-pigeon
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("EDFM_LOGGING_LEVEL", "ERROR")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Logging.Level)
}

func TestDefaultConfigPathFollowsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, filepath.Join("/custom/config", "edfm", "config.yaml"), DefaultConfigPath())
}
