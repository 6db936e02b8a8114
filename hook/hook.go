// Package hook bridges entities to view code that re-renders on change.
//
// A Binding subscribes one slot on an entity, tracks a selected slice of
// its value, and calls onChange only when that selection actually
// changes. Close tombstones the slot. A Scope collects the teardown of
// everything a component bound so it can be released in one call:
//
//	var scope hook.Scope
//	name := hook.Use(profile, func(p Profile) string { return p.Name }, func(string) { view.MarkNeedsBuild() })
//	scope.Add(name.Close)
//	...
//	scope.Dispose()
package hook

import (
	"reflect"

	"github.com/tailored-agentic-units/entity/entity"
)

// Option configures a Binding.
type Option[S any] func(*Binding[S])

// WithEqual replaces the default reflect.DeepEqual comparison.
func WithEqual[S any](equal func(a, b S) bool) Option[S] {
	return func(b *Binding[S]) {
		if equal != nil {
			b.equal = equal
		}
	}
}

// Binding is one view's subscription to a selected part of an entity.
type Binding[S any] struct {
	value S
	equal func(a, b S) bool
	sub   *entity.Subscription
}

// Use binds to e through selector. onChange receives the new selection
// whenever it differs from the previous one; it may be nil when the
// caller only polls Value.
func Use[T, S any](e *entity.Entity[T], selector func(T) S, onChange func(S), opts ...Option[S]) *Binding[S] {
	b := &Binding[S]{
		equal: func(a, b S) bool { return reflect.DeepEqual(a, b) },
	}
	for _, opt := range opts {
		opt(b)
	}

	current, sub := e.Use(func() {
		next := selector(e.Get())
		if b.equal(b.value, next) {
			return
		}
		b.value = next
		if onChange != nil {
			onChange(next)
		}
	})
	b.value = selector(current)
	b.sub = sub
	return b
}

// UseValue binds to the whole value of e.
func UseValue[T any](e *entity.Entity[T], onChange func(T), opts ...Option[T]) *Binding[T] {
	return Use(e, Identity[T], onChange, opts...)
}

// Bind is Use with Close registered on scope.
func Bind[T, S any](scope *Scope, e *entity.Entity[T], selector func(T) S, onChange func(S), opts ...Option[S]) *Binding[S] {
	b := Use(e, selector, onChange, opts...)
	scope.Add(b.Close)
	return b
}

// Identity selects the whole value.
func Identity[T any](v T) T { return v }

// Value returns the most recent selection.
func (b *Binding[S]) Value() S { return b.value }

// Active reports whether the binding still receives notifications.
func (b *Binding[S]) Active() bool { return b.sub.Active() }

// Close stops notifications. It is safe to call more than once.
func (b *Binding[S]) Close() { b.sub.Unsubscribe() }
