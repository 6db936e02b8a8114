package entity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/entity/observability"
	"github.com/tailored-agentic-units/entity/plugin"
)

// Updater computes a new value from the previous one and the extra
// arguments passed to Update. Returning an error leaves the entity
// unchanged.
type Updater[T any] func(prev T, args ...any) (T, error)

// Entity is a reactive value cell. It is confined to the goroutine that
// owns its Runtime; only the runtime's dispatch queue may be used from
// other goroutines.
type Entity[T any] struct {
	id      string
	name    string
	rt      *Runtime
	meta    plugin.Metadata
	initial Initial[T]

	value T
	ready bool
	err   error
	subs  subscribers[T]

	initOp func(struct{}) error
	setOp  func(func(T) (T, error)) error
}

// New constructs an entity inside rt.
//
// init is required: pass Value(v) for an immediate value or Deferred /
// FromChannel for one produced later. Metadata given through WithMetadata
// may be nil, any map keyed by strings, or a struct; other shapes fail
// with ErrInvalidMetadata. Validation failures are returned as
// *ValidationError before anything is registered.
//
// On success the runtime's plugins are filtered against the metadata into
// fixed init and set tap chains, the entity is registered, and Init runs
// once. If that first Init fails the entity stays registered and is
// returned together with the error.
func New[T any](rt *Runtime, init Initial[T], opts ...Option) (*Entity[T], error) {
	if rt == nil {
		return nil, &ValidationError{Field: "runtime", Err: ErrNilRuntime}
	}
	if init == nil {
		return nil, &ValidationError{Field: "initial value", Err: ErrNoInitialValue}
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	meta, err := normalizeMetadata(o.metadata)
	if err != nil {
		return nil, &ValidationError{Field: "metadata", Err: err}
	}

	e := &Entity[T]{
		id:      uuid.Must(uuid.NewV7()).String(),
		rt:      rt,
		meta:    meta,
		initial: init,
	}
	e.name = displayName(o.name, meta, e.id)

	initTaps, setTaps := rt.plugins.Taps(meta)
	e.setOp = chain(e.assign, setTaps, e, meta)
	e.initOp = chain(func(struct{}) error { return e.resolve() }, initTaps, e, meta)

	e.emit(EventCreate, observability.LevelVerbose, map[string]any{
		"id":        e.id,
		"init_taps": len(initTaps),
		"set_taps":  len(setTaps),
	})

	if err := rt.registry.Register(e); err != nil {
		return nil, fmt.Errorf("register entity %s: %w", e.name, err)
	}
	rt.logger.Debug("entity registered",
		slog.String("runtime", rt.name),
		slog.String("entity_id", e.id),
		slog.String("entity_name", e.name),
	)
	e.emit(EventRegister, observability.LevelVerbose, map[string]any{"id": e.id})

	if err := e.Init(); err != nil {
		return e, fmt.Errorf("initialize entity %s: %w", e.name, err)
	}
	return e, nil
}

func displayName(explicit string, meta plugin.Metadata, id string) string {
	if explicit != "" {
		return explicit
	}
	if name, ok := meta.String("name"); ok && name != "" {
		return name
	}
	return id
}

// chain wraps base with each tap in order. Every wrapper runs the
// operation it wraps to completion first and stops on its error.
func chain[A any](base func(A) error, taps []plugin.Tap, t plugin.Target, meta plugin.Metadata) func(A) error {
	op := base
	for _, tap := range taps {
		prev := op
		op = func(a A) error {
			if err := prev(a); err != nil {
				return err
			}
			return tap(t, meta)
		}
	}
	return op
}

// ID returns the entity's unique identifier.
func (e *Entity[T]) ID() string { return e.id }

// Name returns the display name.
func (e *Entity[T]) Name() string { return e.name }

// Get returns the current value, or the zero value while unset.
func (e *Entity[T]) Get() T { return e.value }

// Ready reports whether a value has been stored.
func (e *Entity[T]) Ready() bool { return e.ready }

// Snapshot returns the current value as any.
func (e *Entity[T]) Snapshot() any { return e.value }

// Metadata returns a copy of the construction metadata.
func (e *Entity[T]) Metadata() plugin.Metadata { return e.meta.Clone() }

// Err returns the error from the most recent deferred initialization, or
// nil once a value has been stored after it.
func (e *Entity[T]) Err() error { return e.err }

// Subscribers returns the number of subscriber slots, including
// unsubscribed slots not yet compacted.
func (e *Entity[T]) Subscribers() int { return e.subs.len() }

// Set stores v, notifies subscribers, then runs the set taps.
func (e *Entity[T]) Set(v T) error {
	return e.setOp(func(T) (T, error) { return v, nil })
}

// Update stores fn(current, args...) and proceeds like Set. If fn fails
// its error is returned and nothing is stored or notified.
func (e *Entity[T]) Update(fn Updater[T], args ...any) error {
	if fn == nil {
		return ErrNilUpdater
	}
	return e.setOp(func(prev T) (T, error) { return fn(prev, args...) })
}

// Init re-runs initialization: an immediate value is set again, a deferred
// one re-posts its settled result. Init taps run afterwards.
func (e *Entity[T]) Init() error {
	return e.initOp(struct{}{})
}

// Subscribe appends fn to the subscriber slots. A nil fn yields an
// inactive subscription.
func (e *Entity[T]) Subscribe(fn Subscriber[T]) *Subscription {
	if fn == nil {
		return &Subscription{cancel: func() {}}
	}
	sl := e.subs.add(fn)
	return &Subscription{
		cancel: func() { e.subs.tombstone(sl) },
		active: true,
	}
}

// Use is the hook bridge contract: it returns the current value and
// subscribes onChange, which runs after every stored value with Get
// already returning it. Unsubscribe on teardown. View code normally goes
// through hook.Use or hook.UseValue, which add selection and change
// detection on top.
func (e *Entity[T]) Use(onChange func()) (T, *Subscription) {
	sub := e.Subscribe(func(T) error {
		if onChange != nil {
			onChange()
		}
		return nil
	})
	return e.value, sub
}

func (e *Entity[T]) assign(compute func(T) (T, error)) error {
	next, err := compute(e.value)
	if err != nil {
		return err
	}
	e.value = next
	e.ready = true

	e.emit(EventSet, observability.LevelVerbose, map[string]any{"id": e.id})

	delivered, err := e.subs.notify(e.Get)
	e.emit(EventNotify, observability.LevelVerbose, map[string]any{
		"id":          e.id,
		"subscribers": delivered,
	})
	return err
}

func (e *Entity[T]) resolve() error {
	d := e.initial.deferredValue()
	if d == nil {
		e.emit(EventInit, observability.LevelVerbose, map[string]any{"id": e.id, "deferred": false})
		return e.Set(e.initial.(immediate[T]).value)
	}
	e.schedule(d)
	return nil
}

// schedule starts the deferred loader and posts the continuation to the
// runtime queue. The entity is only touched from the queued callback.
func (e *Entity[T]) schedule(d *deferred[T]) {
	rt := e.rt
	e.emit(EventInitDeferred, observability.LevelVerbose, map[string]any{"id": e.id, "deferred": true})

	go func() {
		v, err := d.await(rt.ctx)
		posted := rt.queue.Post(func() {
			if err != nil {
				e.fail(err)
				return
			}
			if err := e.Set(v); err != nil {
				e.fail(err)
				return
			}
			e.err = nil
		})
		if !posted {
			rt.logger.Warn("deferred initial value dropped",
				slog.String("entity_id", e.id),
				slog.String("entity_name", e.name),
				slog.Any("error", ErrContinuationDenied),
			)
		}
	}()
}

func (e *Entity[T]) fail(err error) {
	e.err = err
	e.rt.logger.Error("deferred initialization failed",
		slog.String("entity_id", e.id),
		slog.String("entity_name", e.name),
		slog.Any("error", err),
	)
	e.emit(EventInitFailed, observability.LevelError, map[string]any{
		"id":    e.id,
		"error": err.Error(),
	})
}

func (e *Entity[T]) emit(typ observability.EventType, level observability.Level, data map[string]any) {
	observability.Emit(context.Background(), e.rt.observer, typ, level, e.name, data)
}
