package localfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edfm/edfm/pkg/backend"
	backendtesting "github.com/edfm/edfm/pkg/backend/testing"
	"github.com/edfm/edfm/pkg/result"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()

	b, err := New("local-test", t.TempDir())
	require.NoError(t, err)
	return b
}

// TestLocalFSBackendSuite runs the shared backend behavioral suite.
func TestLocalFSBackendSuite(t *testing.T) {
	suite := &backendtesting.Suite{
		NewBackend: func(t *testing.T) backend.Backend {
			return newBackend(t)
		},
	}
	suite.Run(t)
}

func TestPathEscapeResolvesToNotFound(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	res := b.Read(ctx, "../../etc/passwd")
	assert.NotEqual(t, result.Success, res.Status)

	// A clean path with inner dotdot that stays inside the root works.
	require.True(t, b.Write(ctx, "dir/sub/../file.txt", []byte("x")).OK())
	read := b.Read(ctx, "dir/file.txt")
	require.True(t, read.OK())
	assert.Equal(t, []byte("x"), read.Data)
}

func TestWriteCreatesParentDirectories(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	require.True(t, b.Write(ctx, "a/b/c/deep.txt", []byte("deep")).OK())

	read := b.Read(ctx, "a/b/c/deep.txt")
	require.True(t, read.OK())
	assert.Equal(t, []byte("deep"), read.Data)
}

func TestDeleteRemovesDirectoryTree(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	require.True(t, b.Write(ctx, "tree/a.txt", []byte("a")).OK())
	require.True(t, b.Write(ctx, "tree/sub/b.txt", []byte("b")).OK())
	require.True(t, b.Delete(ctx, "tree").OK())

	exists := b.Exists(ctx, "tree")
	require.True(t, exists.OK())
	assert.False(t, exists.Data)
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	b := newBackend(t)

	res := b.Delete(context.Background(), "ghost.txt")
	assert.Equal(t, result.NotFound, res.Status)
}

func TestMetadataReportsModeAndModTime(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	require.True(t, b.Write(ctx, "meta.txt", []byte("12345")).OK())

	res := b.GetMetadata(ctx, "meta.txt")
	require.True(t, res.OK())
	assert.False(t, res.Data.ModifiedAt.IsZero())
	assert.NotEmpty(t, res.Data.Metadata["mode"])
}

func TestMoveAcrossDirectories(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	require.True(t, b.Write(ctx, "src/file.txt", []byte("content")).OK())
	require.True(t, b.Move(ctx, "src/file.txt", "dst/nested/file.txt").OK())

	read := b.Read(ctx, "dst/nested/file.txt")
	require.True(t, read.OK())
	assert.Equal(t, []byte("content"), read.Data)
}
