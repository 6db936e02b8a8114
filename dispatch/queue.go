// Package dispatch provides the host task queue that entities resume on.
//
// Entities are confined to a single host goroutine. Work that completes
// elsewhere (a deferred initial value finishing on its loader goroutine)
// posts a callback here, and the host runs it by draining the queue from
// its own goroutine:
//
//	q := dispatch.New()
//	go func() { q.Post(func() { counter.Set(42) }) }()
//	q.Await(ctx) // runs the posted callback on this goroutine
package dispatch

import (
	"context"
	"sync"
)

// Queue is a FIFO of callbacks. Post is safe from any goroutine; Drain,
// Await and Run execute callbacks on the calling goroutine.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	notify chan struct{}
	closed bool
}

// New returns an empty, open queue.
func New() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Post appends callback. It returns false when callback is nil or the
// queue is closed.
func (q *Queue) Post(callback func()) bool {
	if callback == nil {
		return false
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.tasks = append(q.tasks, callback)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Pending reports the number of callbacks waiting to run.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs every callback queued at the time of the call, in order.
// Callbacks posted while draining wait for the next drain.
// A panicking callback propagates; callbacks after it stay queued.
func (q *Queue) Drain() int {
	q.mu.Lock()
	batch := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for i, task := range batch {
		func() {
			defer func() {
				if r := recover(); r != nil {
					q.requeue(batch[i+1:])
					panic(r)
				}
			}()
			task()
		}()
	}
	return len(batch)
}

func (q *Queue) requeue(rest []func()) {
	if len(rest) == 0 {
		return
	}
	q.mu.Lock()
	q.tasks = append(append([]func(){}, rest...), q.tasks...)
	q.mu.Unlock()
}

// Await blocks until at least one callback is pending, then drains.
func (q *Queue) Await(ctx context.Context) (int, error) {
	for {
		if n := q.Drain(); n > 0 {
			return n, nil
		}

		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return 0, ErrClosed
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-q.notify:
		}
	}
}

// Run drains callbacks as they arrive until ctx ends or the queue closes.
func (q *Queue) Run(ctx context.Context) error {
	for {
		if _, err := q.Await(ctx); err != nil {
			return err
		}
	}
}

// Close stops accepting callbacks and wakes any waiter. Callbacks already
// queued can still be drained.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}
