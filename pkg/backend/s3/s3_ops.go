package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/edfm/edfm/pkg/listing"
	"github.com/edfm/edfm/pkg/result"
)

// List returns the direct children of a path, one delimiter-grouped page
// scan at a time. Common prefixes become directories, objects become
// files; the directory's own marker object is skipped.
func (b *Backend) List(ctx context.Context, p string) result.Result[[]listing.Entry] {
	prefix := b.dirKey(p)

	var entries []listing.Entry
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return result.Aborted[[]listing.Entry]()
		}

		page, err := paginator.NextPage(ctx)
		if err != nil {
			return classify[[]listing.Entry](p, err)
		}

		for _, cp := range page.CommonPrefixes {
			if cp.Prefix == nil {
				continue
			}
			dirPath := b.entryPath(*cp.Prefix)
			e := listing.Entry{Kind: listing.KindDirectory}
			entries = append(entries, e.WithPath(dirPath))
		}

		for _, obj := range page.Contents {
			if obj.Key == nil || *obj.Key == prefix {
				continue
			}
			e := listing.Entry{Kind: listing.KindFile}
			if obj.Size != nil {
				e.Size = *obj.Size
			}
			if obj.LastModified != nil {
				e.ModifiedAt = *obj.LastModified
			}
			entries = append(entries, e.WithPath(b.entryPath(*obj.Key)))
		}
	}

	return result.Ok(entries)
}

func (b *Backend) GetMetadata(ctx context.Context, p string) result.Result[listing.Entry] {
	head, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(p)),
	})
	if err != nil {
		res := classify[listing.Entry](p, err)
		if res.Status != result.NotFound {
			return res
		}
		// Not an object; it may still be a directory prefix.
		if b.prefixExists(ctx, p) {
			e := listing.Entry{Kind: listing.KindDirectory}
			return result.Ok(e.WithPath(strings.Trim(p, "/")))
		}
		return res
	}

	e := listing.Entry{
		Kind: listing.KindFile,
		Metadata: map[string]string{
			"storage_class": string(head.StorageClass),
		},
	}
	if head.ContentLength != nil {
		e.Size = *head.ContentLength
	}
	if head.LastModified != nil {
		e.ModifiedAt = *head.LastModified
	}
	if head.ETag != nil {
		e.Metadata["etag"] = strings.Trim(*head.ETag, `"`)
	}
	return result.Ok(e.WithPath(strings.Trim(p, "/")))
}

func (b *Backend) Exists(ctx context.Context, p string) result.Result[bool] {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(p)),
	})
	if err == nil {
		return result.Ok(true)
	}

	res := classify[bool](p, err)
	if res.Status != result.NotFound {
		return res
	}
	return result.Ok(b.prefixExists(ctx, p))
}

// prefixExists reports whether any object lives under the directory
// prefix for p (including its marker object).
func (b *Backend) prefixExists(ctx context.Context, p string) bool {
	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		Prefix:  aws.String(b.dirKey(p)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false
	}
	return out.KeyCount != nil && *out.KeyCount > 0
}

func (b *Backend) Read(ctx context.Context, p string) result.Result[[]byte] {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(p)),
	})
	if err != nil {
		return classify[[]byte](p, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return result.ConnFailed[[]byte](fmt.Sprintf("failed to read body of %s", p), err)
	}
	return result.Ok(data)
}

func (b *Backend) Write(ctx context.Context, p string, data []byte) result.Result[result.Empty] {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(p)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return classify[result.Empty](p, err)
	}
	return result.Done()
}

// Mkdir creates a zero-byte directory marker object, the usual S3
// convention for empty directories.
func (b *Backend) Mkdir(ctx context.Context, p string) result.Result[result.Empty] {
	key := b.dirKey(p)
	if key == "" {
		// The bucket root always exists.
		return result.Done()
	}

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return classify[result.Empty](p, err)
	}
	return result.Done()
}

// Delete removes the object at p, or the directory marker when p names a
// directory. S3 deletes are idempotent; deleting a missing key succeeds.
func (b *Backend) Delete(ctx context.Context, p string) result.Result[result.Empty] {
	key := b.objectKey(p)
	if _, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}); err != nil {
		if res := classify[result.Empty](p, err); res.Status != result.NotFound {
			return res
		}
		if !b.prefixExists(ctx, p) {
			return result.NotFoundf[result.Empty](p)
		}
		key = b.dirKey(p)
	}

	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classify[result.Empty](p, err)
	}
	return result.Done()
}

// Move is not natively supported by S3.
func (b *Backend) Move(ctx context.Context, from, to string) result.Result[result.Empty] {
	return result.Unsupported[result.Empty]("move")
}

// Copy is a server-side CopyObject; content never transits the client.
func (b *Backend) Copy(ctx context.Context, from, to string) result.Result[result.Empty] {
	source := path.Join(b.bucket, b.objectKey(from))

	_, err := b.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(b.bucket),
		Key:        aws.String(b.objectKey(to)),
		CopySource: aws.String(url.PathEscape(source)),
	})
	if err != nil {
		return classify[result.Empty](from, err)
	}
	return result.Done()
}

// DeleteBatch issues one DeleteObjects call for the given paths. Callers
// keep batches at or below 1000 keys, the S3 per-request limit.
func (b *Backend) DeleteBatch(ctx context.Context, paths []string) result.Result[result.Empty] {
	if len(paths) == 0 {
		return result.Done()
	}

	objects := make([]types.ObjectIdentifier, len(paths))
	for i, p := range paths {
		objects[i] = types.ObjectIdentifier{Key: aws.String(b.objectKey(p))}
	}

	out, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(b.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return classify[result.Empty](fmt.Sprintf("%d objects", len(paths)), err)
	}

	if len(out.Errors) > 0 {
		first := out.Errors[0]
		msg := "unknown error"
		if first.Message != nil {
			msg = *first.Message
		}
		return result.Failed[result.Empty]("bulk_delete_partial",
			fmt.Sprintf("%d of %d deletions failed, first: %s", len(out.Errors), len(paths), msg))
	}
	return result.Done()
}
