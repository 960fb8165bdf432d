package supervisor

import (
	"sync"
)

// Registry holds the live process handle for each running server.
// It is the single enforcement point for the invariant that at most one
// running process exists per server name. Safe for concurrent use.
//
// The lock is never held across blocking I/O: lookups copy the handle
// reference out under the read lock and release it before any exchange begins.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle
}

// NewRegistry creates an empty, concurrency-safe Registry.
func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[string]*Handle),
	}
}

// Add inserts a handle for the given name if absent.
// It reports false when an entry already exists; the existing entry is never
// silently replaced.
func (r *Registry) Add(name string, h *Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handles[name]; ok {
		return false
	}
	r.handles[name] = h
	return true
}

// Get returns the handle for the given name.
// It returns a boolean to indicate whether the handle was found.
func (r *Registry) Get(name string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[name]
	return h, ok
}

// Has reports whether a handle is registered for the given name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handles[name]
	return ok
}

// Remove deletes and returns the handle for the given name.
// It reports false when no entry was present, so stopping an already-stopped
// server stays idempotent for callers.
func (r *Registry) Remove(name string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[name]
	if !ok {
		return nil, false
	}
	delete(r.handles, name)
	return h, true
}

// List returns all registered server names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	return names
}
