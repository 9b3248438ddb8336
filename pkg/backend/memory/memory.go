// Package memory implements an in-memory backend.
//
// It declares every capability and supports fault injection, which makes
// it the reference double for executor and transfer tests: any operation
// can be scripted to fail a given number of times, and every backend call
// is recorded in order for assertions.
package memory

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/edfm/edfm/pkg/backend"
	"github.com/edfm/edfm/pkg/listing"
	"github.com/edfm/edfm/pkg/result"
)

var (
	_ backend.Backend           = (*Backend)(nil)
	_ backend.BulkDeleter       = (*Backend)(nil)
	_ backend.MultipartUploader = (*Backend)(nil)
)

// upload tracks one in-flight multipart session.
type upload struct {
	path  string
	parts map[int][]byte
}

// fault is a scripted failure for an operation/path pair.
type fault struct {
	res   result.Result[result.Empty]
	times int
}

// Backend is an in-memory implementation of backend.Backend.
//
// Thread safety: all operations are guarded by one RWMutex, which is
// plenty for a test double.
type Backend struct {
	name string
	caps backend.Set

	mu      sync.RWMutex
	objects map[string][]byte
	dirs    map[string]bool
	uploads map[string]*upload
	faults  map[string]*fault
	calls   []string
}

// New creates an empty in-memory backend declaring every capability.
func New(name string) *Backend {
	return &Backend{
		name: name,
		caps: backend.NewSet(
			backend.CapList, backend.CapRead, backend.CapWrite,
			backend.CapDelete, backend.CapMkdir, backend.CapCopy,
			backend.CapMove, backend.CapDownload, backend.CapUpload,
			backend.CapMetadata, backend.CapBulkDelete,
			backend.CapMultipartUpload,
		),
		objects: make(map[string][]byte),
		dirs:    make(map[string]bool),
		uploads: make(map[string]*upload),
		faults:  make(map[string]*fault),
	}
}

// WithCapabilities narrows (or redefines) the declared capability set.
// Used by tests exercising capability lowering paths.
func (b *Backend) WithCapabilities(caps backend.Set) *Backend {
	b.caps = caps
	return b
}

// InjectFault scripts the next `times` invocations of op against p to
// resolve to res instead of executing. Op names match the Backend method
// in snake case ("delete", "copy", "upload_part", ...).
func (b *Backend) InjectFault(op, p string, res result.Result[result.Empty], times int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.faults[op+" "+p] = &fault{res: res, times: times}
}

// Calls returns every backend call recorded so far, in order, formatted
// as "op path" (or "op from -> to" for move/copy).
func (b *Backend) Calls() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, len(b.calls))
	copy(out, b.calls)
	return out
}

// Seed stores an object without recording a call. Test setup helper.
func (b *Backend) Seed(p string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[p] = data
}

// Object returns the stored bytes for a path. Test assertion helper.
func (b *Backend) Object(p string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.objects[p]
	return data, ok
}

// HasDir reports whether a directory was created at p.
func (b *Backend) HasDir(p string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.dirs[p]
}

// OpenUploads returns the number of multipart sessions not yet completed
// or aborted.
func (b *Backend) OpenUploads() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.uploads)
}

func (b *Backend) Name() string              { return b.name }
func (b *Backend) Capabilities() backend.Set { return b.caps }

// record logs the call and returns a scripted fault, if any. Caller must
// hold the write lock.
func (b *Backend) record(op, target string) (result.Result[result.Empty], bool) {
	b.calls = append(b.calls, op+" "+target)

	if f, ok := b.faults[op+" "+target]; ok && f.times != 0 {
		f.times--
		return f.res, true
	}
	return result.Result[result.Empty]{}, false
}

func (b *Backend) List(ctx context.Context, p string) result.Result[[]listing.Entry] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("list", p); hit {
		return result.Fail[result.Empty, []listing.Entry](res)
	}

	prefix := p
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var entries []listing.Entry
	for objPath, data := range b.objects {
		if !strings.HasPrefix(objPath, prefix) || strings.Contains(objPath[len(prefix):], "/") {
			continue
		}
		entries = append(entries, listing.Entry{
			Name: path.Base(objPath),
			Path: objPath,
			Kind: listing.KindFile,
			Size: int64(len(data)),
		})
	}
	for dirPath := range b.dirs {
		if !strings.HasPrefix(dirPath, prefix) || strings.Contains(dirPath[len(prefix):], "/") {
			continue
		}
		entries = append(entries, listing.Entry{
			Name: path.Base(dirPath),
			Path: dirPath,
			Kind: listing.KindDirectory,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return result.Ok(entries)
}

func (b *Backend) GetMetadata(ctx context.Context, p string) result.Result[listing.Entry] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("get_metadata", p); hit {
		return result.Fail[result.Empty, listing.Entry](res)
	}

	if data, ok := b.objects[p]; ok {
		return result.Ok(listing.Entry{Name: path.Base(p), Path: p, Kind: listing.KindFile, Size: int64(len(data))})
	}
	if b.dirs[p] {
		return result.Ok(listing.Entry{Name: path.Base(p), Path: p, Kind: listing.KindDirectory})
	}
	return result.NotFoundf[listing.Entry](p)
}

func (b *Backend) Exists(ctx context.Context, p string) result.Result[bool] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("exists", p); hit {
		return result.Fail[result.Empty, bool](res)
	}

	_, ok := b.objects[p]
	return result.Ok(ok || b.dirs[p])
}

func (b *Backend) Read(ctx context.Context, p string) result.Result[[]byte] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("read", p); hit {
		return result.Fail[result.Empty, []byte](res)
	}

	data, ok := b.objects[p]
	if !ok {
		return result.NotFoundf[[]byte](p)
	}

	out := make([]byte, len(data))
	copy(out, data)
	return result.Ok(out)
}

func (b *Backend) Write(ctx context.Context, p string, data []byte) result.Result[result.Empty] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("write", p); hit {
		return res
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	b.objects[p] = stored
	return result.Done()
}

func (b *Backend) Mkdir(ctx context.Context, p string) result.Result[result.Empty] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("mkdir", p); hit {
		return res
	}

	b.dirs[p] = true
	return result.Done()
}

func (b *Backend) Delete(ctx context.Context, p string) result.Result[result.Empty] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("delete", p); hit {
		return res
	}

	if _, ok := b.objects[p]; ok {
		delete(b.objects, p)
		return result.Done()
	}
	if b.dirs[p] {
		delete(b.dirs, p)
		return result.Done()
	}
	return result.NotFoundf[result.Empty](p)
}

func (b *Backend) Move(ctx context.Context, from, to string) result.Result[result.Empty] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("move", from+" -> "+to); hit {
		return res
	}

	if data, ok := b.objects[from]; ok {
		b.objects[to] = data
		delete(b.objects, from)
		return result.Done()
	}
	if b.dirs[from] {
		b.dirs[to] = true
		delete(b.dirs, from)
		return result.Done()
	}
	return result.NotFoundf[result.Empty](from)
}

func (b *Backend) Copy(ctx context.Context, from, to string) result.Result[result.Empty] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("copy", from+" -> "+to); hit {
		return res
	}

	data, ok := b.objects[from]
	if !ok {
		if b.dirs[from] {
			b.dirs[to] = true
			return result.Done()
		}
		return result.NotFoundf[result.Empty](from)
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	b.objects[to] = stored
	return result.Done()
}

// DeleteBatch removes every given path in one call. Missing paths are
// ignored, matching bulk-delete semantics of object stores.
func (b *Backend) DeleteBatch(ctx context.Context, paths []string) result.Result[result.Empty] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("delete_batch", fmt.Sprintf("%d", len(paths))); hit {
		return res
	}

	for _, p := range paths {
		delete(b.objects, p)
		delete(b.dirs, p)
	}
	return result.Done()
}

func (b *Backend) BeginUpload(ctx context.Context, p string) result.Result[string] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("begin_upload", p); hit {
		return result.Fail[result.Empty, string](res)
	}

	id := uuid.NewString()
	b.uploads[id] = &upload{path: p, parts: make(map[int][]byte)}
	return result.Ok(id)
}

func (b *Backend) UploadPart(ctx context.Context, p, uploadID string, partNumber int, data []byte) result.Result[result.Empty] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("upload_part", p); hit {
		return res
	}

	u, ok := b.uploads[uploadID]
	if !ok {
		return result.NotFoundf[result.Empty]("upload " + uploadID)
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	u.parts[partNumber] = stored
	return result.Done()
}

func (b *Backend) CompleteUpload(ctx context.Context, p, uploadID string, parts int) result.Result[result.Empty] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("complete_upload", p); hit {
		return res
	}

	u, ok := b.uploads[uploadID]
	if !ok {
		return result.NotFoundf[result.Empty]("upload " + uploadID)
	}
	if len(u.parts) != parts {
		return result.Failed[result.Empty]("incomplete_upload",
			fmt.Sprintf("expected %d parts, have %d", parts, len(u.parts)))
	}

	var assembled []byte
	for part := 1; part <= parts; part++ {
		chunk, ok := u.parts[part]
		if !ok {
			return result.Failed[result.Empty]("missing_part", fmt.Sprintf("part %d missing", part))
		}
		assembled = append(assembled, chunk...)
	}

	b.objects[u.path] = assembled
	delete(b.uploads, uploadID)
	return result.Done()
}

func (b *Backend) AbortUpload(ctx context.Context, p, uploadID string) result.Result[result.Empty] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res, hit := b.record("abort_upload", p); hit {
		return res
	}

	delete(b.uploads, uploadID)
	return result.Done()
}
