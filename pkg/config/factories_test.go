package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMemoryBackend(t *testing.T) {
	b, err := BuildBackend(context.Background(), BackendConfig{
		Name: "scratch",
		Type: "memory",
	})
	require.NoError(t, err)
	assert.Equal(t, "scratch", b.Name())
}

func TestBuildLocalFSBackend(t *testing.T) {
	b, err := BuildBackend(context.Background(), BackendConfig{
		Name:    "local",
		Type:    "localfs",
		Options: map[string]any{"root": t.TempDir()},
	})
	require.NoError(t, err)
	assert.Equal(t, "local", b.Name())
}

func TestBuildLocalFSRequiresRoot(t *testing.T) {
	_, err := BuildBackend(context.Background(), BackendConfig{
		Name: "local",
		Type: "localfs",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root")
}

func TestBuildRejectsUnknownOptionKeys(t *testing.T) {
	_, err := BuildBackend(context.Background(), BackendConfig{
		Name:    "local",
		Type:    "localfs",
		Options: map[string]any{"root": t.TempDir(), "colour": "blue"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")
}

func TestBuildRejectsUnknownType(t *testing.T) {
	_, err := BuildBackend(context.Background(), BackendConfig{
		Name: "weird",
		Type: "carrier-pigeon",
	})
	assert.Error(t, err)
}

func TestBuildS3RequiresBucket(t *testing.T) {
	_, err := BuildBackend(context.Background(), BackendConfig{
		Name:    "archive",
		Type:    "s3",
		Options: map[string]any{"region": "eu-west-1"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func TestInitializeRegistry(t *testing.T) {
	cfg := &Config{
		Backends: []BackendConfig{
			{Name: "scratch", Type: "memory"},
		},
		Profiles: []ProfileConfig{
			{Name: "work", Backend: "scratch", Root: "projects"},
		},
	}
	ApplyDefaults(cfg)
	require.NoError(t, Validate(cfg))

	reg, err := InitializeRegistry(context.Background(), cfg)
	require.NoError(t, err)

	b, err := reg.BackendForProfile("work")
	require.NoError(t, err)
	assert.Equal(t, "scratch", b.Name())

	profile, err := reg.GetProfile("work")
	require.NoError(t, err)
	assert.Equal(t, "projects", profile.Root)
}
