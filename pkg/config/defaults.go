package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edfm/edfm/pkg/transfer"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields.
//
// Default strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Backend-specific defaults are handled by the factories
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyHistoryDefaults(&cfg.History)
	applyExecutionDefaults(&cfg.Execution)

	// A config listing backends but no profiles gets one profile per
	// backend, named after it.
	if len(cfg.Profiles) == 0 {
		for _, b := range cfg.Backends {
			cfg.Profiles = append(cfg.Profiles, ProfileConfig{
				Name:    b.Name,
				Backend: b.Name,
			})
		}
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalized to uppercase for consistent internal representation.
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyHistoryDefaults(cfg *HistoryConfig) {
	if cfg.Path == "" {
		cfg.Path = defaultHistoryDir()
	}
	if cfg.Keep == 0 {
		cfg.Keep = 100
	}
}

func applyExecutionDefaults(cfg *ExecutionConfig) {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBaseDelay == 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	if cfg.RetryMaxDelay == 0 {
		cfg.RetryMaxDelay = 10 * time.Second
	}
	if cfg.UploadThreshold == 0 {
		cfg.UploadThreshold = transfer.DefaultThreshold
	}
	if cfg.UploadPartSize == 0 {
		cfg.UploadPartSize = transfer.DefaultPartSize
	}
	if cfg.DeleteBatchSize == 0 {
		cfg.DeleteBatchSize = transfer.DefaultBatchSize
	}
}

// defaultHistoryDir follows XDG_DATA_HOME with a ~/.local/share
// fallback.
func defaultHistoryDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "edfm", "history")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "edfm-history")
	}
	return filepath.Join(home, ".local", "share", "edfm", "history")
}
