package config

import (
	"context"
	"fmt"

	"github.com/edfm/edfm/internal/logger"
	"github.com/edfm/edfm/pkg/registry"
)

// InitializeRegistry builds the runtime registry from a validated
// configuration: every configured backend is constructed and
// registered, then every profile is bound to its backend.
//
// Backend construction may dial remote services (S3, SFTP); the
// context bounds those handshakes.
func InitializeRegistry(ctx context.Context, cfg *Config) (*registry.Registry, error) {
	reg := registry.New()

	for _, bc := range cfg.Backends {
		logger.Debug("Building backend %s (type %s)", bc.Name, bc.Type)

		b, err := BuildBackend(ctx, bc)
		if err != nil {
			return nil, fmt.Errorf("failed to build backend %s: %w", bc.Name, err)
		}
		if err := reg.RegisterBackend(bc.Name, b); err != nil {
			return nil, err
		}
	}

	for _, pc := range cfg.Profiles {
		logger.Debug("Registering profile %s (backend %s)", pc.Name, pc.Backend)

		profile := &registry.Profile{
			Name:              pc.Name,
			Backend:           pc.Backend,
			Root:              pc.Root,
			ReadOnly:          pc.ReadOnly,
			Concurrency:       pc.Concurrency,
			RequestsPerSecond: pc.RequestsPerSecond,
		}
		if err := reg.AddProfile(profile); err != nil {
			return nil, err
		}
	}

	logger.Info("Registry initialized with %d backends and %d profiles",
		len(cfg.Backends), len(cfg.Profiles))
	return reg, nil
}
