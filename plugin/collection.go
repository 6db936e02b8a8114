package plugin

import "sync"

// Collection is an ordered list of plugins. Entities read it once during
// construction; plugins added later affect only entities built afterwards.
type Collection struct {
	mu      sync.RWMutex
	plugins []Plugin
}

// NewCollection returns a collection holding plugins in the given order.
func NewCollection(plugins ...Plugin) *Collection {
	c := &Collection{}
	c.plugins = append(c.plugins, plugins...)
	return c
}

// Add appends plugins after those already registered.
func (c *Collection) Add(plugins ...Plugin) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plugins = append(c.plugins, plugins...)
}

// All returns a copy of the plugins in registration order.
func (c *Collection) All() []Plugin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Plugin, len(c.plugins))
	copy(out, c.plugins)
	return out
}

// Len reports the number of plugins.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.plugins)
}

// Taps filters the collection for one entity and returns the init and set
// taps that apply to it, each in registration order.
func (c *Collection) Taps(meta Metadata) (initTaps, setTaps []Tap) {
	for _, p := range c.All() {
		if tap := p.InitTap(meta); tap != nil {
			initTaps = append(initTaps, tap)
		}
		if tap := p.SetTap(meta); tap != nil {
			setTaps = append(setTaps, tap)
		}
	}
	return initTaps, setTaps
}
