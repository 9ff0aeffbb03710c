package download

import (
	"sync"

	"github.com/google/uuid"
)

// Handle identifies one in-flight download.
type Handle string

// NewHandle returns a unique Handle.
func NewHandle() Handle {
	return Handle(uuid.NewString())
}

// Callbacks are the subscribers of a single download.
type Callbacks struct {
	// Complete receives the stored file path or the failure.
	Complete func(path string, err error)
	// Progress receives fractions in [0,1].
	Progress func(fraction float64)
}

// Registry is a mutex-protected map of in-flight downloads.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	mu      sync.Mutex
	entries map[Handle]Callbacks
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Handle]Callbacks)}
}

// Register inserts or replaces the callbacks for h.
func (r *Registry) Register(h Handle, cb Callbacks) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[h] = cb
}

// Lookup returns the callbacks registered for h.
func (r *Registry) Lookup(h Handle) (Callbacks, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.entries[h]
	return cb, ok
}

// Remove deletes h and returns what was registered. Only one caller
// observes ok == true for a given registration.
func (r *Registry) Remove(h Handle) (Callbacks, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.entries[h]
	if ok {
		delete(r.entries, h)
	}
	return cb, ok
}

// Len reports the number of in-flight downloads.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// progress delivers fraction to h's subscriber if h is still registered.
func (r *Registry) progress(h Handle, fraction float64) {
	cb, ok := r.Lookup(h)
	if ok && cb.Progress != nil {
		cb.Progress(fraction)
	}
}
