// Package transfer implements the two bulk-operation strategies the plan
// executor leans on: batched bulk deletes and chunked multipart uploads.
//
// Both strategies are generic over the backend contract, report progress
// after every chunk, and resolve cooperatively to Cancelled when the
// caller's context is done between chunks.
package transfer

import (
	"context"

	"github.com/edfm/edfm/pkg/result"
)

// DefaultBatchSize matches the most restrictive bulk-delete limit among
// the supported backends (S3 DeleteObjects caps at 1000 keys).
const DefaultBatchSize = 1000

// DeleteProgress is invoked after each committed batch with the number
// of paths deleted so far and the overall total. Calls observe strictly
// increasing deleted counts.
type DeleteProgress func(deleted, total int)

// BulkDeleteFunc issues one bulk-delete call for a batch of paths.
type BulkDeleteFunc func(ctx context.Context, paths []string) result.Result[result.Empty]

// BatchDeleter partitions delete targets into fixed-size batches and
// issues one bulk-delete call per batch.
type BatchDeleter struct {
	// BatchSize is the maximum paths per call. Zero or negative uses
	// DefaultBatchSize.
	BatchSize int

	// Progress, when set, observes per-batch completion.
	Progress DeleteProgress
}

// Run deletes all paths through fn. An empty input issues zero calls and
// succeeds. The first failing batch stops the run and its result is
// returned; already-committed batches stay deleted (partial completion is
// expected and reported, never rolled back).
func (d *BatchDeleter) Run(ctx context.Context, paths []string, fn BulkDeleteFunc) result.Result[result.Empty] {
	if len(paths) == 0 {
		return result.Done()
	}

	size := d.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	total := len(paths)
	deleted := 0

	for start := 0; start < total; start += size {
		if ctx.Err() != nil {
			return result.Aborted[result.Empty]()
		}

		end := start + size
		if end > total {
			end = total
		}

		if res := fn(ctx, paths[start:end]); !res.OK() {
			return res
		}

		deleted += end - start
		if d.Progress != nil {
			d.Progress(deleted, total)
		}
	}

	return result.Done()
}
