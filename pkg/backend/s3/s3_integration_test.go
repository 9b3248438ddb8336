//go:build integration
// +build integration

package s3

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"github.com/edfm/edfm/pkg/backend"
	backendtesting "github.com/edfm/edfm/pkg/backend/testing"
	"github.com/edfm/edfm/pkg/credentials"
)

// TestS3Backend_Integration runs the shared backend suite against a real
// S3-compatible service.
//
// Prerequisites:
//   - MinIO or Localstack running locally
//   - Run with: go test -tags=integration ./pkg/backend/s3/...
//
// To start Localstack:
//
//	docker run --rm -p 4566:4566 localstack/localstack
func TestS3Backend_Integration(t *testing.T) {
	ctx := context.Background()

	endpoint := os.Getenv("S3_TEST_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:4566"
	}

	b, err := New(ctx, "s3-integration", Config{
		Bucket:   "edfm-test",
		Region:   "us-east-1",
		Endpoint: endpoint,
		Credentials: credentials.Credentials{
			AccessKeyID:     "test",
			SecretAccessKey: "test",
		},
	})
	require.NoError(t, err)

	// The suite assumes an existing bucket.
	_, err = b.client.CreateBucket(ctx, &awss3.CreateBucketInput{
		Bucket: aws.String("edfm-test"),
	})
	if err != nil {
		t.Logf("create bucket: %v (already exists is fine)", err)
	}

	suite := &backendtesting.Suite{
		NewBackend: func(t *testing.T) backend.Backend {
			// Fresh key prefix per test for isolation.
			prefix := fmt.Sprintf("run-%d/", time.Now().UnixNano())
			return NewWithClient("s3-integration", b.client, "edfm-test", prefix)
		},
	}
	suite.Run(t)
}
