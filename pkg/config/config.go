// Package config loads, defaults, and validates the edfm configuration,
// and builds the runtime registry from it.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (EDFM_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// Backend configuration pattern: each backend entry carries a type and a
// free-form options map; only the factory for the selected type
// interprets the options. This keeps backend-specific knobs out of the
// top-level schema.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete edfm configuration.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// History configures the execution report journal
	History HistoryConfig `mapstructure:"history"`

	// Metrics toggles Prometheus metrics collection
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Execution contains executor-wide tuning
	Execution ExecutionConfig `mapstructure:"execution"`

	// Backends defines the named storage backends
	Backends []BackendConfig `mapstructure:"backends" validate:"dive"`

	// Profiles binds working contexts to backends
	Profiles []ProfileConfig `mapstructure:"profiles" validate:"dive"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output specifies where logs are written: stderr, stdout, or a
	// file path.
	Output string `mapstructure:"output" validate:"required"`
}

// HistoryConfig configures the report journal.
type HistoryConfig struct {
	// Path is the journal database directory.
	Path string `mapstructure:"path" validate:"required"`

	// Keep is the number of reports retained by pruning. Zero keeps
	// everything.
	Keep int `mapstructure:"keep" validate:"gte=0"`
}

// MetricsConfig toggles metrics collection.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ExecutionConfig contains executor tuning shared by all profiles.
// Profiles can override concurrency and pacing per backend.
type ExecutionConfig struct {
	// Concurrency bounds parallel operations within a plan group.
	Concurrency int `mapstructure:"concurrency" validate:"gte=0"`

	// MaxAttempts is the total attempts per backend call, including
	// the first.
	MaxAttempts int `mapstructure:"max_attempts" validate:"gte=0"`

	// RetryBaseDelay is the wait before the first re-attempt.
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" validate:"gte=0"`

	// RetryMaxDelay caps the exponential backoff.
	RetryMaxDelay time.Duration `mapstructure:"retry_max_delay" validate:"gte=0"`

	// UploadThreshold is the payload size above which uploads switch
	// to the multipart path.
	UploadThreshold int64 `mapstructure:"upload_threshold" validate:"gte=0"`

	// UploadPartSize is the multipart part size.
	UploadPartSize int64 `mapstructure:"upload_part_size" validate:"gte=0"`

	// DeleteBatchSize bounds paths per bulk-delete call. Capped at the
	// S3 limit of 1000.
	DeleteBatchSize int `mapstructure:"delete_batch_size" validate:"gte=0,lte=1000"`
}

// BackendConfig defines one named backend.
type BackendConfig struct {
	// Name is the registry name other sections reference.
	Name string `mapstructure:"name" validate:"required"`

	// Type selects the backend implementation.
	// Valid values: memory, localfs, s3, sftp
	Type string `mapstructure:"type" validate:"required,oneof=memory localfs s3 sftp"`

	// Options carries type-specific configuration, interpreted by the
	// factory for Type.
	Options map[string]any `mapstructure:"options"`
}

// ProfileConfig binds a working context to a backend.
type ProfileConfig struct {
	// Name is what the user selects on the command line.
	Name string `mapstructure:"name" validate:"required"`

	// Backend references a configured backend by name.
	Backend string `mapstructure:"backend" validate:"required"`

	// Root is the base path within the backend.
	Root string `mapstructure:"root"`

	// ReadOnly rejects commit execution for this profile.
	ReadOnly bool `mapstructure:"read_only"`

	// Concurrency overrides execution.concurrency for this profile.
	Concurrency int `mapstructure:"concurrency" validate:"gte=0"`

	// RequestsPerSecond paces backend calls. Zero disables pacing.
	RequestsPerSecond uint `mapstructure:"requests_per_second"`
}

// Load loads configuration from file, environment, and defaults.
//
// An empty configPath uses the default location
// ($XDG_CONFIG_HOME/edfm/config.yaml). A missing config file is not an
// error; defaults and environment variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variable and config file handling.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the EDFM_ prefix and underscores.
	// Example: EDFM_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("EDFM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env values for keys viper knows about, so the
	// scalar keys are bound explicitly.
	for _, key := range []string{
		"logging.level", "logging.output",
		"history.path", "history.keep",
		"metrics.enabled",
		"execution.concurrency", "execution.max_attempts",
		"execution.retry_base_delay", "execution.retry_max_delay",
		"execution.upload_threshold", "execution.upload_part_size",
		"execution.delete_batch_size",
	} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is acceptable; defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path, following
// XDG_CONFIG_HOME with a ~/.config fallback.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "edfm")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "edfm")
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
