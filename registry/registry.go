// Package registry holds the entities a runtime has constructed, in
// construction order, so they can be listed or re-initialized together.
package registry

import (
	"errors"
	"fmt"
	"sync"
)

// Entry is the untyped view of a registered entity.
type Entry interface {
	ID() string
	Name() string
	Ready() bool
	Snapshot() any
	// Init re-runs the entity's initialization, taps included.
	Init() error
}

// Registry is an ordered set of entries keyed by ID.
type Registry struct {
	mu      sync.RWMutex
	order   []Entry
	entries map[string]Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register appends e. Registering an ID twice fails with ErrDuplicate.
func (r *Registry) Register(e Entry) error {
	if e == nil {
		return ErrNilEntry
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := e.ID()
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	r.entries[id] = e
	r.order = append(r.order, e)
	return nil
}

// Get looks up an entry by ID.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Entries returns the entries in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ResetAll calls Init on every entry in registration order. Every entry is
// attempted; failures are joined and each one names its entry.
//
// Init runs entity code, so ResetAll must be called from the goroutine that
// owns the entities.
func (r *Registry) ResetAll() error {
	var errs []error
	for _, e := range r.Entries() {
		if err := e.Init(); err != nil {
			errs = append(errs, fmt.Errorf("reset %s: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}
