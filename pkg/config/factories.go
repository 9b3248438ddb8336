package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/edfm/edfm/pkg/backend"
	"github.com/edfm/edfm/pkg/backend/localfs"
	"github.com/edfm/edfm/pkg/backend/memory"
	"github.com/edfm/edfm/pkg/backend/s3"
	"github.com/edfm/edfm/pkg/backend/sftp"
	"github.com/edfm/edfm/pkg/credentials"
)

// Option structs for each backend type. The free-form options map is
// decoded into the struct matching the configured type; unknown keys
// are rejected so typos surface at load time rather than as silently
// ignored settings.

type localfsOptions struct {
	Root string `mapstructure:"root"`
}

type s3Options struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

type sftpOptions struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Root           string        `mapstructure:"root"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// BuildBackend constructs a backend from its configuration entry.
func BuildBackend(ctx context.Context, cfg BackendConfig) (backend.Backend, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(cfg.Name), nil
	case "localfs":
		return buildLocalFS(cfg)
	case "s3":
		return buildS3(ctx, cfg)
	case "sftp":
		return buildSFTP(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
	}
}

// decodeOptions decodes the free-form options map into a typed struct,
// rejecting keys the struct does not declare.
func decodeOptions(name string, options map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("backend %s: failed to create options decoder: %w", name, err)
	}
	if err := decoder.Decode(options); err != nil {
		return fmt.Errorf("backend %s: invalid options: %w", name, err)
	}
	return nil
}

func buildLocalFS(cfg BackendConfig) (backend.Backend, error) {
	var opts localfsOptions
	if err := decodeOptions(cfg.Name, cfg.Options, &opts); err != nil {
		return nil, err
	}
	if opts.Root == "" {
		return nil, fmt.Errorf("backend %s: localfs requires a root option", cfg.Name)
	}
	return localfs.New(cfg.Name, opts.Root)
}

func buildS3(ctx context.Context, cfg BackendConfig) (backend.Backend, error) {
	var opts s3Options
	if err := decodeOptions(cfg.Name, cfg.Options, &opts); err != nil {
		return nil, err
	}

	return s3.New(ctx, cfg.Name, s3.Config{
		Bucket:    opts.Bucket,
		Region:    opts.Region,
		Endpoint:  opts.Endpoint,
		KeyPrefix: opts.KeyPrefix,
		Credentials: credentials.Credentials{
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: opts.SecretAccessKey,
			SessionToken:    opts.SessionToken,
		},
		MaxRetries: opts.MaxRetries,
	})
}

func buildSFTP(ctx context.Context, cfg BackendConfig) (backend.Backend, error) {
	var opts sftpOptions
	if err := decodeOptions(cfg.Name, cfg.Options, &opts); err != nil {
		return nil, err
	}

	creds := credentials.Credentials{
		Username: opts.Username,
		Password: opts.Password,
	}
	if opts.PrivateKeyPath != "" {
		pem, err := os.ReadFile(opts.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("backend %s: failed to read private key: %w", cfg.Name, err)
		}
		creds.PrivateKeyPEM = pem
	}

	return sftp.Dial(ctx, cfg.Name, sftp.Config{
		Host:        opts.Host,
		Port:        opts.Port,
		Root:        opts.Root,
		Credentials: creds,
		Timeout:     opts.Timeout,
	})
}
