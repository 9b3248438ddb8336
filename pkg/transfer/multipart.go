package transfer

import (
	"context"

	"github.com/edfm/edfm/internal/logger"
	"github.com/edfm/edfm/pkg/backend"
	"github.com/edfm/edfm/pkg/result"
)

const (
	// DefaultThreshold is the payload size above which uploads switch to
	// the multipart path.
	DefaultThreshold = 5 * 1024 * 1024

	// DefaultPartSize is the fixed part size for multipart uploads; the
	// last part may be smaller.
	DefaultPartSize = 5 * 1024 * 1024
)

// UploadProgress is invoked after each committed part (or after the
// single-request upload) with cumulative bytes transferred.
type UploadProgress func(sent, total int64)

// Uploader stores a payload on a backend, choosing between a single
// write and a chunked multipart upload based on payload size.
type Uploader struct {
	// Threshold is the size above which multipart is used. Zero or
	// negative uses DefaultThreshold.
	Threshold int64

	// PartSize is the fixed multipart part size. Zero or negative uses
	// DefaultPartSize.
	PartSize int64

	// Progress, when set, observes transfer progress.
	Progress UploadProgress
}

// Upload stores payload at path on b.
//
// Payloads at or below the threshold use a single Write call. Larger
// payloads use the backend's multipart protocol when it declares
// CapMultipartUpload, falling back to a single Write otherwise.
//
// Multipart parts are issued sequentially in strictly increasing part
// order (part assembly requires ordered part numbers). If any part fails,
// or the upload is cancelled mid-flight, exactly one abort call is issued
// before the original outcome is propagated; abort failures are logged
// and never mask it.
func (u *Uploader) Upload(ctx context.Context, b backend.Backend, path string, payload []byte) result.Result[result.Empty] {
	threshold := u.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	total := int64(len(payload))

	mp, ok := b.(backend.MultipartUploader)
	if total <= threshold || !ok || !b.Capabilities().Has(backend.CapMultipartUpload) {
		if res := b.Write(ctx, path, payload); !res.OK() {
			return res
		}
		u.report(total, total)
		return result.Done()
	}

	return u.multipart(ctx, mp, path, payload)
}

// PartCount returns the number of parts Upload would issue for a payload
// of the given size on the multipart path.
func (u *Uploader) PartCount(size int64) int {
	partSize := u.PartSize
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	return int((size + partSize - 1) / partSize)
}

func (u *Uploader) multipart(ctx context.Context, mp backend.MultipartUploader, path string, payload []byte) result.Result[result.Empty] {
	partSize := u.PartSize
	if partSize <= 0 {
		partSize = DefaultPartSize
	}

	begin := mp.BeginUpload(ctx, path)
	if !begin.OK() {
		return result.Fail[string, result.Empty](begin)
	}
	uploadID := begin.Data

	total := int64(len(payload))
	parts := u.PartCount(total)
	var sent int64

	for part := 1; part <= parts; part++ {
		if ctx.Err() != nil {
			u.abort(ctx, mp, path, uploadID)
			return result.Aborted[result.Empty]()
		}

		start := int64(part-1) * partSize
		end := start + partSize
		if end > total {
			end = total
		}

		if res := mp.UploadPart(ctx, path, uploadID, part, payload[start:end]); !res.OK() {
			u.abort(ctx, mp, path, uploadID)
			return res
		}

		sent = end
		u.report(sent, total)
	}

	if res := mp.CompleteUpload(ctx, path, uploadID, parts); !res.OK() {
		// The partial upload stays addressable through uploadID for
		// later cleanup; aborting here would discard committed parts.
		return res
	}

	return result.Done()
}

// abort releases a failed upload's partial state. Failures here are
// swallowed so they never mask the original error.
func (u *Uploader) abort(ctx context.Context, mp backend.MultipartUploader, path, uploadID string) {
	if res := mp.AbortUpload(context.WithoutCancel(ctx), path, uploadID); !res.OK() {
		logger.Warn("failed to abort multipart upload %s for %s: %v", uploadID, path, res.Err)
	}
}

func (u *Uploader) report(sent, total int64) {
	if u.Progress != nil {
		u.Progress(sent, total)
	}
}
