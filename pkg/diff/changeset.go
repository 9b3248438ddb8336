// Package diff classifies the difference between two listing snapshots
// into creates, deletes, moves and copies.
//
// Detection is identity-based: entries are matched across snapshots by
// their session-stable ID, never by path. Path changes on a shared ID are
// moves; IDs present on only one side are creates or deletes; a new ID
// whose path collides with one already owned in the edited snapshot is a
// duplication and classifies as a copy of the path's owner.
//
// Detect is a total function: it never fails and performs no I/O.
package diff

import "github.com/edfm/edfm/pkg/listing"

// Copy records a fan-out duplication: Source is the entry owning the
// content to duplicate (as known to the backend, i.e. its original-side
// version) and To is the destination path recorded in the edited
// snapshot.
type Copy struct {
	Source listing.Entry
	To     string
}

// ChangeSet is the classified difference between an original and an
// edited snapshot.
//
// Invariant: an ID appears in at most one of Creates, Deletes or the
// Moves keys. A source entry may back any number of Copies.
type ChangeSet struct {
	// Creates are entries present only in the edited snapshot whose path
	// collides with nothing.
	Creates []listing.Entry

	// Deletes are entries present only in the original snapshot.
	Deletes []listing.Entry

	// Moves maps a shared ID to its new path. Renames and directory
	// moves are both plain path changes; there is no separate kind.
	Moves map[listing.ID]string

	// Copies are duplications of an existing entry to a new destination,
	// in edited-snapshot discovery order.
	Copies []Copy
}

// Empty reports whether the change set carries no work.
func (c *ChangeSet) Empty() bool {
	return len(c.Creates) == 0 && len(c.Deletes) == 0 && len(c.Moves) == 0 && len(c.Copies) == 0
}
