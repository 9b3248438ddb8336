// Package registry manages named backends and the profiles that bind
// working contexts to them.
package registry

import (
	"fmt"
	"sync"

	"github.com/edfm/edfm/pkg/backend"
)

// Registry provides thread-safe registration and lookup of backends and
// profiles.
//
// Example usage:
//
//	reg := registry.New()
//	reg.RegisterBackend("media-bucket", s3Backend)
//	reg.AddProfile(&registry.Profile{Name: "media", Backend: "media-bucket"})
//
//	b, _ := reg.BackendForProfile("media")
type Registry struct {
	mu       sync.RWMutex
	backends map[string]backend.Backend
	profiles map[string]*Profile
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		backends: make(map[string]backend.Backend),
		profiles: make(map[string]*Profile),
	}
}

// RegisterBackend adds a named backend to the registry.
// Returns an error if a backend with the same name already exists.
func (r *Registry) RegisterBackend(name string, b backend.Backend) error {
	if b == nil {
		return fmt.Errorf("cannot register nil backend")
	}
	if name == "" {
		return fmt.Errorf("cannot register backend with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("backend %q already registered", name)
	}

	r.backends[name] = b
	return nil
}

// GetBackend returns a registered backend by name.
func (r *Registry) GetBackend(name string) (backend.Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.backends[name]
	if !exists {
		return nil, fmt.Errorf("backend %q not found", name)
	}
	return b, nil
}

// BackendNames returns the names of all registered backends.
func (r *Registry) BackendNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	return names
}

// AddProfile registers a profile after validating that its backend
// exists. Returns an error if the profile name is taken or the backend
// is unknown.
func (r *Registry) AddProfile(p *Profile) error {
	if p.Name == "" {
		return fmt.Errorf("cannot add profile with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[p.Name]; exists {
		return fmt.Errorf("profile %q already exists", p.Name)
	}
	if _, exists := r.backends[p.Backend]; !exists {
		return fmt.Errorf("profile %q references unknown backend %q", p.Name, p.Backend)
	}

	r.profiles[p.Name] = p
	return nil
}

// GetProfile returns a registered profile by name.
func (r *Registry) GetProfile(name string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.profiles[name]
	if !exists {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

// BackendForProfile resolves a profile name directly to its backend.
func (r *Registry) BackendForProfile(name string) (backend.Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.profiles[name]
	if !exists {
		return nil, fmt.Errorf("profile %q not found", name)
	}

	b, exists := r.backends[p.Backend]
	if !exists {
		return nil, fmt.Errorf("profile %q references unknown backend %q", name, p.Backend)
	}
	return b, nil
}

// ProfileNames returns the names of all registered profiles.
func (r *Registry) ProfileNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	return names
}
