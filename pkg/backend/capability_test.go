package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetHas(t *testing.T) {
	s := NewSet(CapList, CapRead, CapDelete)

	assert.True(t, s.Has(CapList))
	assert.True(t, s.Has(CapDelete))
	assert.False(t, s.Has(CapMove))
	assert.False(t, s.Has(CapMultipartUpload))
}

func TestSetHasAll(t *testing.T) {
	s := NewSet(CapCopy, CapDelete)

	assert.True(t, s.HasAll(CapCopy, CapDelete))
	assert.False(t, s.HasAll(CapCopy, CapMove))
	assert.True(t, s.HasAll()) // vacuous
}

func TestSetWithDoesNotMutateReceiver(t *testing.T) {
	s := NewSet(CapList)
	extended := s.With(CapWrite)

	assert.False(t, s.Has(CapWrite))
	assert.True(t, extended.Has(CapWrite))
	assert.True(t, extended.Has(CapList))
}

func TestSetSliceOrder(t *testing.T) {
	s := NewSet(CapMove, CapList, CapUpload)

	assert.Equal(t, []Capability{CapList, CapMove, CapUpload}, s.Slice())
}

func TestSetString(t *testing.T) {
	s := NewSet(CapList, CapBulkDelete)
	assert.Equal(t, "list,bulk_delete", s.String())
	assert.Equal(t, "", Set(0).String())
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "server_side_copy", CapServerSideCopy.String())
	assert.Equal(t, "unknown", Capability(200).String())
}
