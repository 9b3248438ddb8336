// Package backend defines the storage backend contract the plan executor
// drives: a uniform operation surface returning typed results, plus an
// explicit capability declaration per backend.
//
// Implementations live in the subpackages (s3, sftp, localfs, memory).
// Each constructor receives an already-resolved credentials value; this
// package never acquires credentials itself.
package backend

import (
	"context"

	"github.com/edfm/edfm/pkg/listing"
	"github.com/edfm/edfm/pkg/result"
)

// Backend is the operation surface the executor dispatches against.
//
// Every method returns a typed result rather than a plain error so that
// outcomes stay within the closed status taxonomy. Implementations answer
// result.Unsupported for operations outside their declared capability
// set; the executor additionally consults Capabilities before dispatch so
// unsupported operations never reach the network.
type Backend interface {
	// Name identifies the backend instance (profile name) in logs and
	// reports.
	Name() string

	// Capabilities returns the backend's declared capability set. The
	// set is fixed for the lifetime of the handle.
	Capabilities() Set

	// List returns the entries directly under the given path. Entries
	// carry no IDs; the caller assigns identities via listing.Registry.
	List(ctx context.Context, path string) result.Result[[]listing.Entry]

	// GetMetadata returns the entry at the given path.
	GetMetadata(ctx context.Context, path string) result.Result[listing.Entry]

	// Exists reports whether the path exists.
	Exists(ctx context.Context, path string) result.Result[bool]

	// Read returns the full content at the given path.
	Read(ctx context.Context, path string) result.Result[[]byte]

	// Write stores content at the given path, replacing any existing
	// object.
	Write(ctx context.Context, path string, data []byte) result.Result[result.Empty]

	// Mkdir creates a directory at the given path. Backends without real
	// directories (object stores) succeed without contacting the remote.
	Mkdir(ctx context.Context, path string) result.Result[result.Empty]

	// Delete removes the object or (empty) directory at the given path.
	Delete(ctx context.Context, path string) result.Result[result.Empty]

	// Move relocates an object between paths.
	Move(ctx context.Context, from, to string) result.Result[result.Empty]

	// Copy duplicates an object to a new path.
	Copy(ctx context.Context, from, to string) result.Result[result.Empty]
}

// BulkDeleter is implemented by backends whose protocol offers a bulk
// delete call. Usage is gated on CapBulkDelete; the transfer layer
// partitions targets into batches before calling DeleteBatch.
type BulkDeleter interface {
	// DeleteBatch removes all given paths in one backend call. Paths
	// that do not exist are ignored.
	DeleteBatch(ctx context.Context, paths []string) result.Result[result.Empty]
}

// MultipartUploader is implemented by backends whose protocol supports
// chunked uploads. Usage is gated on CapMultipartUpload.
//
// The expected call sequence is Begin, then UploadPart with strictly
// increasing part numbers starting at 1, then Complete. A failed or
// abandoned upload must be released with Abort; until then the partial
// state stays addressable through the upload ID returned by Begin.
type MultipartUploader interface {
	BeginUpload(ctx context.Context, path string) result.Result[string]
	UploadPart(ctx context.Context, path, uploadID string, partNumber int, data []byte) result.Result[result.Empty]
	CompleteUpload(ctx context.Context, path, uploadID string, parts int) result.Result[result.Empty]
	AbortUpload(ctx context.Context, path, uploadID string) result.Result[result.Empty]
}
