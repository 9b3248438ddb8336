package registry

// Profile binds a working context to a registered backend:
// - A profile name (what the user selects on the command line)
// - A backend instance (where operations execute)
// - A root path (the subtree the session operates on)
// - Execution limits (read-only, concurrency, rate)
//
// Multiple profiles can reference the same backend instance.
type Profile struct {
	Name    string
	Backend string // Name of the registered backend
	Root    string // Base path within the backend, "" for the backend root

	// ReadOnly rejects commit execution for this profile; plans can
	// still be computed and rendered.
	ReadOnly bool

	// Concurrency bounds parallel operations per plan group. Zero uses
	// the executor default.
	Concurrency int

	// RequestsPerSecond paces backend calls. Zero disables pacing.
	RequestsPerSecond uint
}
