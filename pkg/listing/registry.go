package listing

import (
	"sync"
	"sync/atomic"
)

// Registry issues entry identities and provides O(1) ID lookup for one
// edit session.
//
// Identity assignment never fails and IDs are never reused. The registry
// lives for the duration of a single buffer-edit session and is discarded
// when the user navigates away from the directory being edited; it holds
// no cross-session state.
//
// Thread safety: assignment and lookup are safe for concurrent use. The
// executor only reads from the registry while a plan is running.
type Registry struct {
	next atomic.Uint64

	mu      sync.RWMutex
	entries map[ID]Entry
}

// NewRegistry creates an empty identity registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ID]Entry)}
}

// Assign gives the entry a fresh ID, records it, and returns the
// identified entry. The entry's previous ID field, if any, is ignored.
func (r *Registry) Assign(e Entry) Entry {
	e.ID = ID(r.next.Add(1))

	r.mu.Lock()
	r.entries[e.ID] = e
	r.mu.Unlock()

	return e
}

// AssignAll identifies a batch of freshly listed entries in order.
func (r *Registry) AssignAll(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = r.Assign(e)
	}
	return out
}

// Lookup returns the entry recorded under the given ID.
func (r *Registry) Lookup(id ID) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	return e, ok
}

// Len returns the number of identities issued so far.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
