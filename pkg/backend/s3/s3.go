// Package s3 implements a backend over Amazon S3 or S3-compatible
// storage (MinIO, Localstack, Cubbit DS3).
//
// Path mapping: backend paths become object keys under an optional key
// prefix. Directories are a convention, not a real object: a directory
// exists when a zero-byte marker object at "<key>/" exists or any object
// lives under that prefix. S3 has no rename, so the backend does not
// declare the move capability and moves lower to copy+delete.
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsretry "github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/edfm/edfm/pkg/backend"
	"github.com/edfm/edfm/pkg/credentials"
	"github.com/edfm/edfm/pkg/result"
)

var (
	_ backend.Backend           = (*Backend)(nil)
	_ backend.BulkDeleter       = (*Backend)(nil)
	_ backend.MultipartUploader = (*Backend)(nil)
)

// Config parameterizes an S3 backend.
type Config struct {
	// Bucket is the S3 bucket name. Required.
	Bucket string

	// Region is the AWS region. Required.
	Region string

	// Endpoint overrides the AWS endpoint for S3-compatible storage.
	// When set, path-style addressing is forced.
	Endpoint string

	// KeyPrefix is an optional prefix for all object keys.
	KeyPrefix string

	// Credentials authenticate the client. Empty key material falls
	// back to the default AWS credential chain.
	Credentials credentials.Credentials

	// MaxRetries bounds SDK-level retries for transient HTTP failures.
	// Zero uses 3. The executor's own retry policy layers on top for
	// connection-level outcomes.
	MaxRetries int
}

// Backend is an S3 implementation of backend.Backend.
type Backend struct {
	name      string
	client    *s3.Client
	bucket    string
	keyPrefix string

	// uploads tracks the completed parts of in-flight multipart
	// sessions; CompleteMultipartUpload needs every part's ETag.
	uploadsMu sync.Mutex
	uploads   map[string][]types.CompletedPart
}

// New creates an S3 backend, building the client from the config.
func New(ctx context.Context, name string, cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 backend: bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3 backend: region is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.Credentials.HasKeyPair() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			awscreds.NewStaticCredentialsProvider(
				cfg.Credentials.AccessKeyID,
				cfg.Credentials.SecretAccessKey,
				cfg.Credentials.SessionToken,
			),
		))
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	opts = append(opts, awsconfig.WithRetryer(func() aws.Retryer {
		return awsretry.NewStandard(func(o *awsretry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing for MinIO/Localstack compatibility.
			o.UsePathStyle = true
		}
	})

	return NewWithClient(name, client, cfg.Bucket, cfg.KeyPrefix), nil
}

// NewWithClient creates an S3 backend around an existing client. Used by
// tests and callers that manage client construction themselves.
func NewWithClient(name string, client *s3.Client, bucket, keyPrefix string) *Backend {
	return &Backend{
		name:      name,
		client:    client,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		uploads:   make(map[string][]types.CompletedPart),
	}
}

func (b *Backend) Name() string { return b.name }

func (b *Backend) Capabilities() backend.Set {
	return backend.NewSet(
		backend.CapList, backend.CapRead, backend.CapWrite,
		backend.CapDelete, backend.CapMkdir, backend.CapCopy,
		backend.CapServerSideCopy, backend.CapContainers,
		backend.CapMetadata, backend.CapDownload, backend.CapUpload,
		backend.CapBulkDelete, backend.CapMultipartUpload,
	)
}

// objectKey maps a backend path to an object key under the prefix.
func (b *Backend) objectKey(p string) string {
	p = strings.Trim(p, "/")
	if b.keyPrefix == "" {
		return p
	}
	prefix := strings.TrimSuffix(b.keyPrefix, "/")
	if p == "" {
		return prefix
	}
	return prefix + "/" + p
}

// dirKey is the listing prefix (and marker key) for a directory path.
func (b *Backend) dirKey(p string) string {
	key := b.objectKey(p)
	if key == "" {
		return ""
	}
	return key + "/"
}

// entryPath converts an object key back to a backend path.
func (b *Backend) entryPath(key string) string {
	if b.keyPrefix != "" {
		key = strings.TrimPrefix(key, strings.TrimSuffix(b.keyPrefix, "/")+"/")
	}
	return strings.TrimSuffix(key, "/")
}

// classify maps SDK errors onto the result taxonomy. Modeled API errors
// resolve by code; anything without an API error is treated as a
// transport failure and marked retryable.
func classify[T any](target string, err error) result.Result[T] {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return result.NotFoundf[T](target)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket", "NoSuchUpload":
			return result.NotFoundf[T](target)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return result.Denied[T](target)
		default:
			return result.Wrap[T]("s3_"+apiErr.ErrorCode(), err)
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return result.Aborted[T]()
	}

	return result.ConnFailed[T](fmt.Sprintf("s3 call for %s failed", target), err)
}
