package entity

import (
	"context"
	"sync"
)

// Initial is the starting value of an entity: either available now (Value)
// or produced later (Deferred, FromChannel). A nil Initial means no value
// was given and is rejected by New.
type Initial[T any] interface {
	deferredValue() *deferred[T]
}

type immediate[T any] struct {
	value T
}

func (immediate[T]) deferredValue() *deferred[T] { return nil }

// Value is an initial value that is set synchronously during New.
func Value[T any](v T) Initial[T] {
	return immediate[T]{value: v}
}

// deferred evaluates its loader at most once; every Init after the first
// reuses the settled result.
type deferred[T any] struct {
	load func(context.Context) (T, error)

	once  sync.Once
	value T
	err   error
}

func (d *deferred[T]) deferredValue() *deferred[T] { return d }

func (d *deferred[T]) await(ctx context.Context) (T, error) {
	d.once.Do(func() {
		d.value, d.err = d.load(ctx)
	})
	return d.value, d.err
}

// Deferred is an initial value produced by load on its own goroutine. The
// entity stays unset until the runtime's dispatch queue runs the
// continuation that stores the result. Deferred(nil) returns nil.
func Deferred[T any](load func(ctx context.Context) (T, error)) Initial[T] {
	if load == nil {
		return nil
	}
	return &deferred[T]{load: load}
}

// FromChannel is a deferred initial value taken from the first receive on
// ch. A closed channel settles with ErrChannelClosed.
func FromChannel[T any](ch <-chan T) Initial[T] {
	if ch == nil {
		return nil
	}
	return Deferred(func(ctx context.Context) (T, error) {
		select {
		case v, ok := <-ch:
			if !ok {
				var zero T
				return zero, ErrChannelClosed
			}
			return v, nil
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	})
}
