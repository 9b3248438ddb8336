package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edfm/edfm/pkg/listing"
)

func entry(id listing.ID, path string) listing.Entry {
	return listing.Entry{ID: id, Path: path, Name: path, Kind: listing.KindFile}
}

func dir(id listing.ID, path string) listing.Entry {
	return listing.Entry{ID: id, Path: path, Name: path, Kind: listing.KindDirectory}
}

func TestDetectIdenticalSnapshotsYieldEmptyChangeSet(t *testing.T) {
	s := listing.NewSnapshot(entry(1, "a.txt"), dir(2, "docs"), entry(3, "docs/b.txt"))

	cs := Detect(s, s.Clone())

	assert.True(t, cs.Empty())
}

func TestDetectMove(t *testing.T) {
	original := listing.NewSnapshot(entry(1, "old/f.txt"))
	edited := listing.NewSnapshot(entry(1, "new/f.txt"))

	cs := Detect(original, edited)

	assert.Empty(t, cs.Creates)
	assert.Empty(t, cs.Deletes)
	assert.Empty(t, cs.Copies)
	assert.Equal(t, map[listing.ID]string{1: "new/f.txt"}, cs.Moves)
}

func TestDetectRenameIsAMove(t *testing.T) {
	original := listing.NewSnapshot(entry(1, "report.txt"))
	edited := listing.NewSnapshot(entry(1, "report-final.txt"))

	cs := Detect(original, edited)

	assert.Equal(t, map[listing.ID]string{1: "report-final.txt"}, cs.Moves)
}

func TestDetectCreateAndDelete(t *testing.T) {
	original := listing.NewSnapshot(entry(1, "keep.txt"), entry(2, "gone.txt"))
	edited := listing.NewSnapshot(entry(1, "keep.txt"), entry(3, "fresh.txt"))

	cs := Detect(original, edited)

	require.Len(t, cs.Creates, 1)
	assert.Equal(t, listing.ID(3), cs.Creates[0].ID)

	require.Len(t, cs.Deletes, 1)
	assert.Equal(t, listing.ID(2), cs.Deletes[0].ID)

	assert.Empty(t, cs.Moves)
	assert.Empty(t, cs.Copies)
}

func TestDetectDuplicatePathIsACopy(t *testing.T) {
	// Spec scenario: a provisional entry landing on a path owned by an
	// original entry is a duplication, not a create.
	original := listing.NewSnapshot(entry(1, "a.txt"))
	edited := listing.NewSnapshot(entry(1, "a.txt"), entry(2, "a.txt"))

	cs := Detect(original, edited)

	assert.Empty(t, cs.Creates)
	require.Len(t, cs.Copies, 1)
	assert.Equal(t, "a.txt", cs.Copies[0].Source.Path)
	assert.Equal(t, "a.txt", cs.Copies[0].To)
}

func TestDetectCopySourceIsOriginalSideOfMovedOwner(t *testing.T) {
	// Owner moved a.txt -> b.txt; a provisional entry occupies b.txt too.
	// The copy must address the owner where the backend still holds it,
	// because copies execute before moves.
	original := listing.NewSnapshot(entry(1, "a.txt"))
	edited := listing.NewSnapshot(entry(1, "b.txt"), entry(2, "b.txt"))

	cs := Detect(original, edited)

	require.Len(t, cs.Copies, 1)
	assert.Equal(t, "a.txt", cs.Copies[0].Source.Path)
	assert.Equal(t, "b.txt", cs.Copies[0].To)
	assert.Equal(t, map[listing.ID]string{1: "b.txt"}, cs.Moves)
}

func TestDetectFanOutDuplication(t *testing.T) {
	// Three duplicates of the same source, all permitted.
	original := listing.NewSnapshot(entry(1, "a.txt"))
	edited := listing.NewSnapshot(
		entry(1, "a.txt"),
		entry(2, "a.txt"),
		entry(3, "a.txt"),
		entry(4, "a.txt"),
	)

	cs := Detect(original, edited)

	assert.Empty(t, cs.Creates)
	require.Len(t, cs.Copies, 3)
	for _, c := range cs.Copies {
		assert.Equal(t, listing.ID(1), c.Source.ID)
	}
}

func TestDetectProvisionalCollisionWithoutOriginalOwner(t *testing.T) {
	// Two brand-new entries on the same path: the first stays a create
	// and sources the second.
	original := listing.NewSnapshot()
	edited := listing.NewSnapshot(entry(10, "new.txt"), entry(11, "new.txt"))

	cs := Detect(original, edited)

	require.Len(t, cs.Creates, 1)
	assert.Equal(t, listing.ID(10), cs.Creates[0].ID)

	require.Len(t, cs.Copies, 1)
	assert.Equal(t, listing.ID(10), cs.Copies[0].Source.ID)
	assert.Equal(t, "new.txt", cs.Copies[0].To)
}

func TestDetectDirectoryMoveDoesNotImplyChildren(t *testing.T) {
	// Only the directory ID moved; the child was not re-listed under the
	// new path, so it classifies as an orphaned delete.
	original := listing.NewSnapshot(dir(1, "old"), entry(2, "old/f.txt"))
	edited := listing.NewSnapshot(dir(1, "new"))

	cs := Detect(original, edited)

	assert.Equal(t, map[listing.ID]string{1: "new"}, cs.Moves)
	require.Len(t, cs.Deletes, 1)
	assert.Equal(t, listing.ID(2), cs.Deletes[0].ID)
}

func TestDetectDirectoryMoveWithReListedChildren(t *testing.T) {
	original := listing.NewSnapshot(dir(1, "old"), entry(2, "old/f.txt"), entry(3, "old/g.txt"))
	edited := listing.NewSnapshot(dir(1, "new"), entry(2, "new/f.txt"), entry(3, "new/g.txt"))

	cs := Detect(original, edited)

	assert.Empty(t, cs.Creates)
	assert.Empty(t, cs.Deletes)
	assert.Equal(t, map[listing.ID]string{
		1: "new",
		2: "new/f.txt",
		3: "new/g.txt",
	}, cs.Moves)
}

func TestDetectKindChangeOnUnchangedPathIsNoOp(t *testing.T) {
	original := listing.NewSnapshot(entry(1, "thing"))
	edited := listing.NewSnapshot(dir(1, "thing"))

	cs := Detect(original, edited)

	assert.True(t, cs.Empty())
}

func TestDetectClassificationsAreExclusive(t *testing.T) {
	// Every ID across both snapshots lands in exactly one bucket.
	original := listing.NewSnapshot(
		entry(1, "a.txt"),
		entry(2, "b.txt"),
		entry(3, "c.txt"),
		dir(4, "docs"),
	)
	edited := listing.NewSnapshot(
		entry(1, "a.txt"),         // unchanged
		entry(2, "moved/b.txt"),   // move
		entry(5, "fresh.txt"),     // create
		entry(6, "a.txt"),         // copy of 1
		dir(4, "docs"),            // unchanged
	)

	cs := Detect(original, edited)

	seen := make(map[listing.ID]string)
	record := func(id listing.ID, bucket string) {
		prev, dup := seen[id]
		require.Falsef(t, dup, "id %d classified as both %s and %s", id, prev, bucket)
		seen[id] = bucket
	}

	for _, e := range cs.Creates {
		record(e.ID, "create")
	}
	for _, e := range cs.Deletes {
		record(e.ID, "delete")
	}
	for id := range cs.Moves {
		record(id, "move")
	}

	assert.Equal(t, map[listing.ID]string{2: "move", 3: "delete", 5: "create"}, seen)
	require.Len(t, cs.Copies, 1)
	assert.Equal(t, listing.ID(1), cs.Copies[0].Source.ID)
}

func TestDetectIsPureOverInputs(t *testing.T) {
	original := listing.NewSnapshot(entry(1, "a.txt"))
	edited := listing.NewSnapshot(entry(1, "b.txt"), entry(2, "c.txt"))

	_ = Detect(original, edited)

	// Inputs are untouched by detection.
	got, _ := original.Get(1)
	assert.Equal(t, "a.txt", got.Path)
	assert.Equal(t, 2, edited.Len())
}
