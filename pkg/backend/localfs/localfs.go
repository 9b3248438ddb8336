// Package localfs implements a backend over a local filesystem subtree.
//
// All paths are resolved relative to a root directory fixed at creation;
// escaping the root with ".." segments resolves to NotFound rather than
// touching anything outside it.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/edfm/edfm/pkg/backend"
	"github.com/edfm/edfm/pkg/listing"
	"github.com/edfm/edfm/pkg/result"
)

var _ backend.Backend = (*Backend)(nil)

// Backend operates on a subtree of the local filesystem.
type Backend struct {
	name string
	root string
}

// New creates a backend rooted at the given directory. The directory is
// created if it does not exist.
func New(name, root string) (*Backend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create root %s: %w", abs, err)
	}
	return &Backend{name: name, root: abs}, nil
}

func (b *Backend) Name() string { return b.name }

func (b *Backend) Capabilities() backend.Set {
	return backend.NewSet(
		backend.CapList, backend.CapRead, backend.CapWrite,
		backend.CapDelete, backend.CapMkdir, backend.CapCopy,
		backend.CapMove, backend.CapDownload, backend.CapUpload,
		backend.CapMetadata, backend.CapSymlinks, backend.CapPermissions,
	)
}

// resolve maps a backend path onto the local tree, refusing paths that
// escape the root.
func (b *Backend) resolve(p string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(p))
	if cleaned == "/" {
		return b.root, nil
	}
	full := filepath.Join(b.root, cleaned)
	if !strings.HasPrefix(full, b.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s escapes backend root", p)
	}
	return full, nil
}

// classify maps filesystem errors onto the result taxonomy.
func classify(target string, err error) result.Result[result.Empty] {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return result.NotFoundf[result.Empty](target)
	case errors.Is(err, fs.ErrPermission):
		return result.Denied[result.Empty](target)
	default:
		return result.Wrap[result.Empty]("io_error", err)
	}
}

func entryFromInfo(p string, info fs.FileInfo) listing.Entry {
	kind := listing.KindFile
	if info.IsDir() {
		kind = listing.KindDirectory
	}

	e := listing.Entry{
		Kind:       kind,
		ModifiedAt: info.ModTime(),
		Metadata:   map[string]string{"mode": info.Mode().String()},
	}
	if kind == listing.KindFile {
		e.Size = info.Size()
	}
	return e.WithPath(p)
}

func (b *Backend) List(ctx context.Context, p string) result.Result[[]listing.Entry] {
	full, err := b.resolve(p)
	if err != nil {
		return result.NotFoundf[[]listing.Entry](p)
	}

	dirents, err := os.ReadDir(full)
	if err != nil {
		return result.Fail[result.Empty, []listing.Entry](classify(p, err))
	}

	entries := make([]listing.Entry, 0, len(dirents))
	for _, d := range dirents {
		info, err := d.Info()
		if err != nil {
			// Entry vanished between ReadDir and Stat.
			continue
		}
		childPath := strings.TrimPrefix(p+"/"+d.Name(), "/")
		if p == "" || p == "/" {
			childPath = d.Name()
		}
		entries = append(entries, entryFromInfo(childPath, info))
	}
	return result.Ok(entries)
}

func (b *Backend) GetMetadata(ctx context.Context, p string) result.Result[listing.Entry] {
	full, err := b.resolve(p)
	if err != nil {
		return result.NotFoundf[listing.Entry](p)
	}

	info, err := os.Stat(full)
	if err != nil {
		return result.Fail[result.Empty, listing.Entry](classify(p, err))
	}
	return result.Ok(entryFromInfo(p, info))
}

func (b *Backend) Exists(ctx context.Context, p string) result.Result[bool] {
	full, err := b.resolve(p)
	if err != nil {
		return result.Ok(false)
	}

	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result.Ok(false)
		}
		return result.Fail[result.Empty, bool](classify(p, err))
	}
	return result.Ok(true)
}

func (b *Backend) Read(ctx context.Context, p string) result.Result[[]byte] {
	full, err := b.resolve(p)
	if err != nil {
		return result.NotFoundf[[]byte](p)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return result.Fail[result.Empty, []byte](classify(p, err))
	}
	return result.Ok(data)
}

func (b *Backend) Write(ctx context.Context, p string, data []byte) result.Result[result.Empty] {
	full, err := b.resolve(p)
	if err != nil {
		return result.NotFoundf[result.Empty](p)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return classify(p, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return classify(p, err)
	}
	return result.Done()
}

func (b *Backend) Mkdir(ctx context.Context, p string) result.Result[result.Empty] {
	full, err := b.resolve(p)
	if err != nil {
		return result.NotFoundf[result.Empty](p)
	}

	if err := os.MkdirAll(full, 0o755); err != nil {
		return classify(p, err)
	}
	return result.Done()
}

func (b *Backend) Delete(ctx context.Context, p string) result.Result[result.Empty] {
	full, err := b.resolve(p)
	if err != nil {
		return result.NotFoundf[result.Empty](p)
	}

	if _, err := os.Stat(full); err != nil {
		return classify(p, err)
	}
	if err := os.RemoveAll(full); err != nil {
		return classify(p, err)
	}
	return result.Done()
}

func (b *Backend) Move(ctx context.Context, from, to string) result.Result[result.Empty] {
	src, err := b.resolve(from)
	if err != nil {
		return result.NotFoundf[result.Empty](from)
	}
	dst, err := b.resolve(to)
	if err != nil {
		return result.NotFoundf[result.Empty](to)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return classify(to, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return classify(from, err)
	}
	return result.Done()
}

func (b *Backend) Copy(ctx context.Context, from, to string) result.Result[result.Empty] {
	read := b.Read(ctx, from)
	if !read.OK() {
		return result.Discard(read)
	}
	return b.Write(ctx, to, read.Data)
}
