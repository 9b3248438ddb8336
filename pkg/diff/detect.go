package diff

import "github.com/edfm/edfm/pkg/listing"

// Detect diffs the edited snapshot against the original and classifies
// every entry into exactly one of: unchanged, moved, created, deleted, or
// copy target.
//
// Classification rules:
//
//   - ID in both snapshots, same path: unchanged. A kind change on an
//     unchanged path is deliberately passed through as a no-op.
//   - ID in both snapshots, different path: move to the edited path.
//   - ID only in edited (provisional): if the entry's path is already
//     owned by another entry of the edited snapshot, the provisional is a
//     copy of that owner; otherwise it is a create.
//   - ID only in original: delete.
//
// Ownership for the copy rule prefers an entry that also exists in the
// original snapshot (its original-side version becomes the copy source,
// since copies execute before moves and the backend still holds the
// content at the original path). When only provisional entries share the
// path, the earliest one stays a create and sources the later ones.
//
// Children are never inferred from a parent directory's move: each child
// must carry its own ID in both snapshots to be treated as moved with the
// parent. Children listed only on one side classify independently as
// creates or deletes.
func Detect(original, edited *listing.Snapshot) *ChangeSet {
	cs := &ChangeSet{Moves: make(map[listing.ID]string)}

	// Entries of the edited snapshot that survive from the original own
	// their edited path for collision purposes. The map holds the
	// original-side version, which is what a copy must address.
	ownerByPath := make(map[string]listing.Entry)

	var provisional []listing.Entry

	for _, e := range edited.Entries() {
		orig, ok := original.Get(e.ID)
		if !ok {
			provisional = append(provisional, e)
			continue
		}

		if orig.Path != e.Path {
			cs.Moves[e.ID] = e.Path
		}
		ownerByPath[e.Path] = orig
	}

	// Provisional entries resolve in discovery order so that the first
	// occupant of a contested path stays a create and becomes the source
	// for later colliders.
	createByPath := make(map[string]listing.Entry)

	for _, p := range provisional {
		if owner, ok := ownerByPath[p.Path]; ok {
			cs.Copies = append(cs.Copies, Copy{Source: owner, To: p.Path})
			continue
		}
		if owner, ok := createByPath[p.Path]; ok {
			cs.Copies = append(cs.Copies, Copy{Source: owner, To: p.Path})
			continue
		}

		cs.Creates = append(cs.Creates, p)
		createByPath[p.Path] = p
	}

	for _, e := range original.Entries() {
		if !edited.Contains(e.ID) {
			cs.Deletes = append(cs.Deletes, e)
		}
	}

	return cs
}
