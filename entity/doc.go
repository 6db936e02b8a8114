// Package entity provides reactive value cells ("entities") that live
// outside any view tree.
//
// An entity holds one current value and an ordered list of subscribers.
// Set and Update replace the value wholesale and notify every live
// subscriber synchronously, in subscription order:
//
//	rt, _ := entity.NewRuntime(nil)
//	counter, _ := entity.New(rt, entity.Value(0))
//	counter.Subscribe(func(v int) error { fmt.Println(v); return nil })
//	counter.Update(func(n int, _ ...any) (int, error) { return n + 1, nil })
//
// # Runtime
//
// Entities are created inside a Runtime, which owns the registry used by
// ResetAll, the ordered plugin collection, the dispatch queue, and the
// observer and logger. Nothing is package-global; tests build a fresh
// runtime each time.
//
// # Initial values
//
// Value(v) stores v before New returns. Deferred(load) and FromChannel(ch)
// leave the entity unset (Ready reports false) until the loader settles
// and the runtime queue runs the continuation:
//
//	profile, _ := entity.New(rt, entity.Deferred(fetchProfile))
//	rt.Queue().Await(ctx) // profile.Get() now holds the loaded value
//
// A failed loader leaves the entity unset; the error is available from
// Err, logged, and emitted as EventInitFailed.
//
// # Plugins
//
// Each plugin may tap Init and Set. Taps are filtered once per entity by
// the plugin's predicates over the entity metadata and run after the
// operation body, in plugin registration order. Any error, from an
// updater, a subscriber, or a tap, is returned to the caller and stops
// whatever would have run after it.
//
// # Subscribers
//
// Unsubscribing marks a slot dead without moving other slots. Dead slots
// are removed at the start of the next notification pass. Each pass
// delivers only to the slots present when it starts.
package entity
