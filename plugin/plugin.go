// Package plugin defines the descriptor that external plugins use to tap
// entity init and set operations, and the ordered collection a runtime
// hands to every entity it constructs.
//
// A plugin may supply any subset of its four fields. For each entity the
// predicates are evaluated once against the entity's metadata; a predicate
// returning true removes that plugin's tap for the operation on that entity.
// Surviving taps run after the operation body, in registration order.
package plugin

// Metadata is the caller-supplied record attached to an entity at
// construction. Plugins treat it as read-only.
type Metadata map[string]any

// Bool returns the boolean at key and whether it was present as a bool.
func (m Metadata) Bool(key string) (value, ok bool) {
	value, ok = m[key].(bool)
	return value, ok
}

// String returns the string at key and whether it was present as a string.
func (m Metadata) String(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Has reports whether key is present.
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Clone returns a shallow copy; nil clones to an empty map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Target is the untyped view of an entity passed to taps.
type Target interface {
	ID() string
	Name() string
	Ready() bool
	Snapshot() any
}

// Tap runs after an entity operation. A non-nil error is returned to the
// caller of that operation and skips every later tap.
type Tap func(t Target, meta Metadata) error

// Predicate decides from metadata whether a tap is skipped for an entity.
type Predicate func(meta Metadata) bool

// Plugin describes the taps one plugin contributes.
type Plugin struct {
	Name             string
	OnInit           Tap
	OnSet            Tap
	ShouldIgnoreInit Predicate
	ShouldIgnoreSet  Predicate
}

// InitTap returns the init tap to apply for meta, or nil.
func (p Plugin) InitTap(meta Metadata) Tap {
	return selectTap(p.OnInit, p.ShouldIgnoreInit, meta)
}

// SetTap returns the set tap to apply for meta, or nil.
func (p Plugin) SetTap(meta Metadata) Tap {
	return selectTap(p.OnSet, p.ShouldIgnoreSet, meta)
}

func selectTap(tap Tap, ignore Predicate, meta Metadata) Tap {
	if ignore != nil && ignore(meta) {
		return nil
	}
	return tap
}

// OptOut builds a predicate that ignores entities whose metadata sets key
// to false. Built-in plugins use it for "trace", "devtools" and similar.
func OptOut(key string) Predicate {
	return func(meta Metadata) bool {
		v, ok := meta.Bool(key)
		return ok && !v
	}
}
