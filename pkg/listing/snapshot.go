package listing

// Snapshot is a collection of entries unique by ID, representing one
// moment of a listing: either the last state synchronized from the
// backend (original) or the in-memory state after user edits (edited).
//
// Entries keep their insertion order so that derived change sets and
// plans are deterministic, but the collection is semantically unordered:
// only ID membership and per-entry paths matter to reconciliation.
//
// A Snapshot is not safe for concurrent mutation. Snapshots are built
// single-threaded at commit time and read-only afterwards.
type Snapshot struct {
	entries []Entry
	index   map[ID]int
}

// NewSnapshot builds a snapshot from the given entries. Later duplicates
// of an ID replace earlier ones, keeping the original position.
func NewSnapshot(entries ...Entry) *Snapshot {
	s := &Snapshot{index: make(map[ID]int, len(entries))}
	for _, e := range entries {
		s.Put(e)
	}
	return s
}

// Put inserts or replaces the entry with the same ID.
func (s *Snapshot) Put(e Entry) {
	if i, ok := s.index[e.ID]; ok {
		s.entries[i] = e
		return
	}
	s.index[e.ID] = len(s.entries)
	s.entries = append(s.entries, e)
}

// Get returns the entry with the given ID.
func (s *Snapshot) Get(id ID) (Entry, bool) {
	i, ok := s.index[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Contains reports whether an entry with the given ID is present.
func (s *Snapshot) Contains(id ID) bool {
	_, ok := s.index[id]
	return ok
}

// Entries returns the entries in insertion order. The returned slice is a
// copy; mutating it does not affect the snapshot.
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Clone returns an independent copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	return NewSnapshot(s.entries...)
}
