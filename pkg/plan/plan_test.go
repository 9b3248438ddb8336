package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edfm/edfm/pkg/diff"
	"github.com/edfm/edfm/pkg/listing"
)

func entry(id listing.ID, path string) listing.Entry {
	return listing.Entry{ID: id, Path: path, Name: path, Kind: listing.KindFile}
}

func TestBuildOrdersGroups(t *testing.T) {
	original := listing.NewSnapshot(
		entry(1, "keep.txt"),
		entry(2, "old/m.txt"),
		entry(3, "trash.txt"),
	)
	cs := &diff.ChangeSet{
		Deletes: []listing.Entry{entry(3, "trash.txt")},
		Moves:   map[listing.ID]string{2: "new/m.txt"},
		Creates: []listing.Entry{entry(4, "fresh.txt")},
		Copies:  []diff.Copy{{Source: entry(1, "keep.txt"), To: "keep-copy.txt"}},
	}

	p := Build(original, cs)

	require.Len(t, p.Operations, 4)

	idx := make(map[Kind]int)
	for i, op := range p.Operations {
		idx[op.Kind] = i
	}
	assert.Less(t, idx[KindCreate], idx[KindMove])
	assert.Less(t, idx[KindCopy], idx[KindMove])
	assert.Less(t, idx[KindMove], idx[KindDelete])
}

func TestBuildResolvesMoveSourcePath(t *testing.T) {
	original := listing.NewSnapshot(entry(7, "old/f.txt"))
	cs := &diff.ChangeSet{Moves: map[listing.ID]string{7: "new/f.txt"}}

	p := Build(original, cs)

	require.Len(t, p.Operations, 1)
	op := p.Operations[0]
	assert.Equal(t, KindMove, op.Kind)
	assert.Equal(t, "old/f.txt", op.From)
	assert.Equal(t, "new/f.txt", op.To)
}

func TestBuildMoveOrderIsDeterministic(t *testing.T) {
	original := listing.NewSnapshot(
		entry(5, "e"), entry(3, "c"), entry(9, "i"), entry(1, "a"),
	)
	cs := &diff.ChangeSet{Moves: map[listing.ID]string{
		9: "i2", 1: "a2", 5: "e2", 3: "c2",
	}}

	p := Build(original, cs)

	var ids []listing.ID
	for _, op := range p.Operations {
		ids = append(ids, op.ID)
	}
	assert.Equal(t, []listing.ID{1, 3, 5, 9}, ids)
}

func TestBuildSummary(t *testing.T) {
	original := listing.NewSnapshot(entry(1, "a"), entry(2, "b"))
	cs := &diff.ChangeSet{
		Creates: []listing.Entry{entry(3, "c"), entry(4, "d")},
		Copies:  []diff.Copy{{Source: entry(1, "a"), To: "a2"}},
		Moves:   map[listing.ID]string{2: "b2"},
		Deletes: []listing.Entry{entry(1, "a")},
	}

	p := Build(original, cs)

	assert.Equal(t, Summary{Creates: 2, Copies: 1, Moves: 1, Deletes: 1, Total: 5}, p.Summary)
	assert.Equal(t, p.Summary.Total, len(p.Operations))
}

func TestBuildEmptyChangeSet(t *testing.T) {
	p := Build(listing.NewSnapshot(), &diff.ChangeSet{})

	assert.True(t, p.Empty())
	assert.Equal(t, 0, p.Summary.Total)
}

func TestGroups(t *testing.T) {
	original := listing.NewSnapshot(entry(1, "a"), entry(2, "b"), entry(3, "c"))
	cs := &diff.ChangeSet{
		Creates: []listing.Entry{entry(4, "d")},
		Copies:  []diff.Copy{{Source: entry(1, "a"), To: "a2"}},
		Moves:   map[listing.ID]string{2: "b2"},
		Deletes: []listing.Entry{entry(3, "c")},
	}

	p := Build(original, cs)
	nonDestructive, moves, deletes := p.Groups()

	require.Len(t, nonDestructive, 2)
	require.Len(t, moves, 1)
	require.Len(t, deletes, 1)
	assert.Equal(t, KindMove, moves[0].Kind)
	assert.Equal(t, KindDelete, deletes[0].Kind)
}

func TestGroupsWithMissingMiddleGroup(t *testing.T) {
	original := listing.NewSnapshot(entry(1, "a"))
	cs := &diff.ChangeSet{
		Creates: []listing.Entry{entry(2, "b")},
		Deletes: []listing.Entry{entry(1, "a")},
	}

	p := Build(original, cs)
	nonDestructive, moves, deletes := p.Groups()

	assert.Len(t, nonDestructive, 1)
	assert.Empty(t, moves)
	assert.Len(t, deletes, 1)
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "copy a -> b", CopyOf(entry(1, "a"), "b").String())
	assert.Equal(t, "move a -> b", Move(1, "a", "b").String())
	assert.Equal(t, "delete a", Delete(entry(1, "a")).String())
	assert.Equal(t, "create b", Create(entry(2, "b")).String())
}
