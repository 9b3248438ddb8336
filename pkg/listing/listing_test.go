package listing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAssignsMonotonicIDs(t *testing.T) {
	reg := NewRegistry()

	a := reg.Assign(Entry{Name: "a.txt", Path: "a.txt", Kind: KindFile})
	b := reg.Assign(Entry{Name: "b.txt", Path: "b.txt", Kind: KindFile})

	assert.NotZero(t, a.ID)
	assert.Greater(t, b.ID, a.ID)
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()

	e := reg.Assign(Entry{Name: "docs", Path: "docs", Kind: KindDirectory})

	got, ok := reg.Lookup(e.ID)
	require.True(t, ok)
	assert.Equal(t, "docs", got.Name)

	_, ok = reg.Lookup(ID(9999))
	assert.False(t, ok)
}

func TestRegistryIgnoresPresetID(t *testing.T) {
	reg := NewRegistry()

	e := reg.Assign(Entry{ID: ID(42), Name: "x", Path: "x"})
	assert.NotEqual(t, ID(42), e.ID)
}

func TestRegistryConcurrentAssign(t *testing.T) {
	reg := NewRegistry()

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				reg.Assign(Entry{Name: "f", Path: "f"})
			}
		}()
	}
	wg.Wait()

	// Every assignment produced a distinct identity.
	assert.Equal(t, workers*perWorker, reg.Len())
}

func TestSnapshotPutReplacesByID(t *testing.T) {
	s := NewSnapshot(
		Entry{ID: 1, Name: "a.txt", Path: "a.txt"},
		Entry{ID: 2, Name: "b.txt", Path: "b.txt"},
	)

	s.Put(Entry{ID: 1, Name: "a2.txt", Path: "a2.txt"})

	require.Equal(t, 2, s.Len())
	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "a2.txt", got.Path)

	// Replacement keeps the original position.
	assert.Equal(t, ID(1), s.Entries()[0].ID)
}

func TestSnapshotPreservesInsertionOrder(t *testing.T) {
	s := NewSnapshot(
		Entry{ID: 3, Path: "c"},
		Entry{ID: 1, Path: "a"},
		Entry{ID: 2, Path: "b"},
	)

	var ids []ID
	for _, e := range s.Entries() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []ID{3, 1, 2}, ids)
}

func TestWithPathUpdatesName(t *testing.T) {
	e := Entry{ID: 1, Name: "f.txt", Path: "old/f.txt"}
	moved := e.WithPath("new/renamed.txt")

	assert.Equal(t, "renamed.txt", moved.Name)
	assert.Equal(t, "new/renamed.txt", moved.Path)

	// Original is untouched.
	assert.Equal(t, "old/f.txt", e.Path)
}
