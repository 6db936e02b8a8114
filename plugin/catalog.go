package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog maps names to plugins so configuration can select them.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Plugin
}

// NewCatalog returns a catalog pre-populated with plugins keyed by Name.
func NewCatalog(plugins ...Plugin) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]Plugin)}
	for _, p := range plugins {
		if err := c.Register(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds p under p.Name.
func (c *Catalog) Register(p Plugin) error {
	if p.Name == "" {
		return ErrEmptyName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[p.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, p.Name)
	}
	c.entries[p.Name] = p
	return nil
}

// Get looks up a plugin by name.
func (c *Catalog) Get(name string) (Plugin, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[name]
	return p, ok
}

// Resolve returns the named plugins in the order given.
func (c *Catalog) Resolve(names []string) ([]Plugin, error) {
	out := make([]Plugin, 0, len(names))
	for _, name := range names {
		p, ok := c.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		out = append(out, p)
	}
	return out, nil
}

// Names lists registered names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
