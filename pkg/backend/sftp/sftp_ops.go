package sftp

import (
	"context"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/edfm/edfm/pkg/listing"
	"github.com/edfm/edfm/pkg/result"
)

// The sftp client API is not context-aware; every operation checks the
// context on entry and otherwise runs to completion.

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
	if ctx.Err() != nil {
		return result.Aborted[[]listing.Entry]()
	}

	infos, err := b.client.ReadDir(b.resolve(p))
	if err != nil {
		return classify[[]listing.Entry](p, err)
	}

	base := strings.Trim(p, "/")
	entries := make([]listing.Entry, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if name == "." || name == ".." {
			continue
		}
		childPath := name
		if base != "" {
			childPath = path.Join(base, name)
		}
		entries = append(entries, entryFromInfo(childPath, info))
	}
	return result.Ok(entries)
}

func (b *Backend) GetMetadata(ctx context.Context, p string) result.Result[listing.Entry] {
	if ctx.Err() != nil {
		return result.Aborted[listing.Entry]()
	}

	info, err := b.client.Stat(b.resolve(p))
	if err != nil {
		return classify[listing.Entry](p, err)
	}
	return result.Ok(entryFromInfo(strings.Trim(p, "/"), info))
}

func (b *Backend) Exists(ctx context.Context, p string) result.Result[bool] {
	if ctx.Err() != nil {
		return result.Aborted[bool]()
	}

	if _, err := b.client.Stat(b.resolve(p)); err != nil {
		if res := classify[bool](p, err); res.Status != result.NotFound {
			return res
		}
		return result.Ok(false)
	}
	return result.Ok(true)
}

func (b *Backend) Read(ctx context.Context, p string) result.Result[[]byte] {
	if ctx.Err() != nil {
		return result.Aborted[[]byte]()
	}

	f, err := b.client.Open(b.resolve(p))
	if err != nil {
		return classify[[]byte](p, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return classify[[]byte](p, err)
	}
	return result.Ok(data)
}

func (b *Backend) Write(ctx context.Context, p string, data []byte) result.Result[result.Empty] {
	if ctx.Err() != nil {
		return result.Aborted[result.Empty]()
	}

	remote := b.resolve(p)
	if dir := path.Dir(remote); dir != "." && dir != "/" {
		if err := b.client.MkdirAll(dir); err != nil {
			return classify[result.Empty](p, err)
		}
	}

	f, err := b.client.Create(remote)
	if err != nil {
		return classify[result.Empty](p, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return classify[result.Empty](p, err)
	}
	if err := f.Close(); err != nil {
		return classify[result.Empty](p, err)
	}
	return result.Done()
}

func (b *Backend) Mkdir(ctx context.Context, p string) result.Result[result.Empty] {
	if ctx.Err() != nil {
		return result.Aborted[result.Empty]()
	}

	if err := b.client.MkdirAll(b.resolve(p)); err != nil {
		return classify[result.Empty](p, err)
	}
	return result.Done()
}

func (b *Backend) Delete(ctx context.Context, p string) result.Result[result.Empty] {
	if ctx.Err() != nil {
		return result.Aborted[result.Empty]()
	}

	remote := b.resolve(p)
	info, err := b.client.Stat(remote)
	if err != nil {
		return classify[result.Empty](p, err)
	}

	if info.IsDir() {
		err = b.client.RemoveAll(remote)
	} else {
		err = b.client.Remove(remote)
	}
	if err != nil {
		return classify[result.Empty](p, err)
	}
	return result.Done()
}

// Move renames server-side. PosixRename overwrites an existing target
// atomically where the server supports the extension; the standard
// rename is the fallback.
func (b *Backend) Move(ctx context.Context, from, to string) result.Result[result.Empty] {
	if ctx.Err() != nil {
		return result.Aborted[result.Empty]()
	}

	src, dst := b.resolve(from), b.resolve(to)
	if dir := path.Dir(dst); dir != "." && dir != "/" {
		if err := b.client.MkdirAll(dir); err != nil {
			return classify[result.Empty](to, err)
		}
	}

	err := b.client.PosixRename(src, dst)
	if err != nil {
		if res := classify[result.Empty](from, err); res.Status != result.Unimplemented {
			return res
		}
		if err := b.client.Rename(src, dst); err != nil {
			return classify[result.Empty](from, err)
		}
	}
	return result.Done()
}

// Copy is not natively supported by SFTP.
func (b *Backend) Copy(ctx context.Context, from, to string) result.Result[result.Empty] {
	return result.Unsupported[result.Empty]("copy")
}
