package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{
		Backends: []BackendConfig{
			{Name: "scratch", Type: "memory"},
		},
		Profiles: []ProfileConfig{
			{Name: "work", Backend: "scratch"},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateRejectsDuplicateBackendNames(t *testing.T) {
	cfg := validConfig()
	cfg.Backends = append(cfg.Backends, BackendConfig{Name: "scratch", Type: "localfs"})

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate backend name")
}

func TestValidateRejectsDuplicateProfileNames(t *testing.T) {
	cfg := validConfig()
	cfg.Profiles = append(cfg.Profiles, ProfileConfig{Name: "work", Backend: "scratch"})

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate profile name")
}

func TestValidateRejectsUnknownBackendReference(t *testing.T) {
	cfg := validConfig()
	cfg.Profiles = append(cfg.Profiles, ProfileConfig{Name: "other", Backend: "missing"})

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestValidateRejectsOversizedDeleteBatch(t *testing.T) {
	cfg := validConfig()
	cfg.Execution.DeleteBatchSize = 1001

	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsBackendWithoutName(t *testing.T) {
	cfg := validConfig()
	cfg.Backends = append(cfg.Backends, BackendConfig{Type: "memory"})

	assert.Error(t, Validate(cfg))
}
