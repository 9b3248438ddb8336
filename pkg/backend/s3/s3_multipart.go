package s3

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/edfm/edfm/pkg/result"
)

// BeginUpload starts a multipart upload session for p.
func (b *Backend) BeginUpload(ctx context.Context, p string) result.Result[string] {
	out, err := b.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(p)),
	})
	if err != nil {
		return classify[string](p, err)
	}

	uploadID := aws.ToString(out.UploadId)

	b.uploadsMu.Lock()
	b.uploads[uploadID] = nil
	b.uploadsMu.Unlock()

	return result.Ok(uploadID)
}

// UploadPart uploads one part and records its ETag for completion.
func (b *Backend) UploadPart(ctx context.Context, p, uploadID string, partNumber int, data []byte) result.Result[result.Empty] {
	out, err := b.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(b.bucket),
		Key:        aws.String(b.objectKey(p)),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(int32(partNumber)),
		Body:       bytes.NewReader(data),
	})
	if err != nil {
		return classify[result.Empty](p, err)
	}

	b.uploadsMu.Lock()
	b.uploads[uploadID] = append(b.uploads[uploadID], types.CompletedPart{
		ETag:       out.ETag,
		PartNumber: aws.Int32(int32(partNumber)),
	})
	b.uploadsMu.Unlock()

	return result.Done()
}

// CompleteUpload assembles the uploaded parts into the final object.
func (b *Backend) CompleteUpload(ctx context.Context, p, uploadID string, parts int) result.Result[result.Empty] {
	b.uploadsMu.Lock()
	completed := append([]types.CompletedPart(nil), b.uploads[uploadID]...)
	b.uploadsMu.Unlock()

	if len(completed) != parts {
		return result.Failed[result.Empty]("incomplete_upload",
			"recorded parts do not match the expected part count")
	}

	// S3 requires parts in ascending part-number order.
	sort.Slice(completed, func(i, j int) bool {
		return aws.ToInt32(completed[i].PartNumber) < aws.ToInt32(completed[j].PartNumber)
	})

	_, err := b.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(b.bucket),
		Key:             aws.String(b.objectKey(p)),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return classify[result.Empty](p, err)
	}

	b.uploadsMu.Lock()
	delete(b.uploads, uploadID)
	b.uploadsMu.Unlock()

	return result.Done()
}

// AbortUpload cancels an in-progress multipart upload. Idempotent:
// aborting an already-released session succeeds.
func (b *Backend) AbortUpload(ctx context.Context, p, uploadID string) result.Result[result.Empty] {
	_, err := b.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(b.bucket),
		Key:      aws.String(b.objectKey(p)),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		var noSuchUpload *types.NoSuchUpload
		if !errors.As(err, &noSuchUpload) {
			return classify[result.Empty](p, err)
		}
	}

	b.uploadsMu.Lock()
	delete(b.uploads, uploadID)
	b.uploadsMu.Unlock()

	return result.Done()
}
