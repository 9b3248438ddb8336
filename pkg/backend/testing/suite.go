// Package testing provides a reusable behavioral suite that every
// backend implementation must pass.
//
// Usage from a backend package:
//
//	func TestMemoryBackend(t *testing.T) {
//		suite := &backendtesting.Suite{
//			NewBackend: func(t *testing.T) backend.Backend { ... },
//		}
//		suite.Run(t)
//	}
//
// Capability-gated tests skip themselves when the backend under test
// does not declare the capability they exercise.
package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edfm/edfm/pkg/backend"
	"github.com/edfm/edfm/pkg/listing"
	"github.com/edfm/edfm/pkg/result"
)

// Suite exercises the common backend contract.
type Suite struct {
	// NewBackend returns a fresh, empty backend for one test.
	NewBackend func(t *testing.T) backend.Backend
}

// Run executes the full suite.
func (s *Suite) Run(t *testing.T) {
	t.Run("WriteReadRoundtrip", s.testWriteReadRoundtrip)
	t.Run("ReadMissingIsNotFound", s.testReadMissing)
	t.Run("Exists", s.testExists)
	t.Run("GetMetadata", s.testGetMetadata)
	t.Run("List", s.testList)
	t.Run("MkdirAndListDirectory", s.testMkdir)
	t.Run("Delete", s.testDelete)
	t.Run("Move", s.testMove)
	t.Run("Copy", s.testCopy)
	t.Run("CapabilitiesDeclared", s.testCapabilitiesDeclared)
}

func (s *Suite) backend(t *testing.T, need ...backend.Capability) backend.Backend {
	t.Helper()

	b := s.NewBackend(t)
	if !b.Capabilities().HasAll(need...) {
		t.Skipf("backend %s does not declare required capabilities", b.Name())
	}
	return b
}

func (s *Suite) testWriteReadRoundtrip(t *testing.T) {
	b := s.backend(t, backend.CapWrite, backend.CapRead)
	ctx := context.Background()

	payload := []byte("hello backend")
	require.True(t, b.Write(ctx, "dir/hello.txt", payload).OK())

	res := b.Read(ctx, "dir/hello.txt")
	require.True(t, res.OK())
	assert.Equal(t, payload, res.Data)
}

func (s *Suite) testReadMissing(t *testing.T) {
	b := s.backend(t, backend.CapRead)

	res := b.Read(context.Background(), "missing.txt")
	assert.Equal(t, result.NotFound, res.Status)
}

func (s *Suite) testExists(t *testing.T) {
	b := s.backend(t, backend.CapWrite)
	ctx := context.Background()

	require.True(t, b.Write(ctx, "here.txt", []byte("x")).OK())

	res := b.Exists(ctx, "here.txt")
	require.True(t, res.OK())
	assert.True(t, res.Data)

	res = b.Exists(ctx, "not-here.txt")
	require.True(t, res.OK())
	assert.False(t, res.Data)
}

func (s *Suite) testGetMetadata(t *testing.T) {
	b := s.backend(t, backend.CapWrite, backend.CapMetadata)
	ctx := context.Background()

	require.True(t, b.Write(ctx, "meta.txt", []byte("12345")).OK())

	res := b.GetMetadata(ctx, "meta.txt")
	require.True(t, res.OK())
	assert.Equal(t, "meta.txt", res.Data.Name)
	assert.Equal(t, listing.KindFile, res.Data.Kind)
	assert.Equal(t, int64(5), res.Data.Size)

	missing := b.GetMetadata(ctx, "nope.txt")
	assert.Equal(t, result.NotFound, missing.Status)
}

func (s *Suite) testList(t *testing.T) {
	b := s.backend(t, backend.CapList, backend.CapWrite)
	ctx := context.Background()

	require.True(t, b.Write(ctx, "ls/a.txt", []byte("a")).OK())
	require.True(t, b.Write(ctx, "ls/b.txt", []byte("b")).OK())
	require.True(t, b.Write(ctx, "ls/sub/c.txt", []byte("c")).OK())

	res := b.List(ctx, "ls")
	require.True(t, res.OK())

	names := make(map[string]bool)
	for _, e := range res.Data {
		names[e.Name] = true
	}
	assert.True(t, names["a.txt"])
	assert.True(t, names["b.txt"])
	// Only direct children are listed.
	assert.False(t, names["c.txt"])
}

func (s *Suite) testMkdir(t *testing.T) {
	b := s.backend(t, backend.CapMkdir)
	ctx := context.Background()

	require.True(t, b.Mkdir(ctx, "made").OK())

	res := b.Exists(ctx, "made")
	require.True(t, res.OK())
	assert.True(t, res.Data)
}

func (s *Suite) testDelete(t *testing.T) {
	b := s.backend(t, backend.CapWrite, backend.CapDelete)
	ctx := context.Background()

	require.True(t, b.Write(ctx, "doomed.txt", []byte("x")).OK())
	require.True(t, b.Delete(ctx, "doomed.txt").OK())

	res := b.Exists(ctx, "doomed.txt")
	require.True(t, res.OK())
	assert.False(t, res.Data)
}

func (s *Suite) testMove(t *testing.T) {
	b := s.backend(t, backend.CapWrite, backend.CapRead, backend.CapMove)
	ctx := context.Background()

	require.True(t, b.Write(ctx, "from.txt", []byte("content")).OK())
	require.True(t, b.Move(ctx, "from.txt", "to.txt").OK())

	moved := b.Read(ctx, "to.txt")
	require.True(t, moved.OK())
	assert.Equal(t, []byte("content"), moved.Data)

	gone := b.Exists(ctx, "from.txt")
	require.True(t, gone.OK())
	assert.False(t, gone.Data)
}

func (s *Suite) testCopy(t *testing.T) {
	b := s.backend(t, backend.CapWrite, backend.CapRead, backend.CapCopy)
	ctx := context.Background()

	require.True(t, b.Write(ctx, "src.txt", []byte("content")).OK())
	require.True(t, b.Copy(ctx, "src.txt", "dup.txt").OK())

	// Both source and duplicate exist afterwards.
	for _, p := range []string{"src.txt", "dup.txt"} {
		res := b.Read(ctx, p)
		require.True(t, res.OK())
		assert.Equal(t, []byte("content"), res.Data)
	}
}

func (s *Suite) testCapabilitiesDeclared(t *testing.T) {
	b := s.NewBackend(t)

	caps := b.Capabilities()
	assert.NotZero(t, caps, "a backend must declare at least one capability")
	assert.NotEmpty(t, b.Name())
}
