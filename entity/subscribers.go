package entity

// Subscriber receives every value stored by an entity. A non-nil error
// stops the notification pass and is returned from Set or Update.
type Subscriber[T any] func(value T) error

type slot[T any] struct {
	fn   Subscriber[T]
	live bool
}

// subscribers is an ordered slot store. Unsubscribing only clears a slot's
// liveness; dead slots are dropped by compact at the start of the next
// notification pass.
type subscribers[T any] struct {
	slots      []*slot[T]
	tombstones int
}

func (s *subscribers[T]) add(fn Subscriber[T]) *slot[T] {
	sl := &slot[T]{fn: fn, live: true}
	s.slots = append(s.slots, sl)
	return sl
}

func (s *subscribers[T]) tombstone(sl *slot[T]) {
	if !sl.live {
		return
	}
	sl.live = false
	sl.fn = nil
	s.tombstones++
}

// compact rebuilds the slot list without tombstones. A fresh backing array
// is used so a pass already iterating the old list is unaffected.
func (s *subscribers[T]) compact() {
	if s.tombstones == 0 {
		return
	}
	kept := make([]*slot[T], 0, len(s.slots)-s.tombstones)
	for _, sl := range s.slots {
		if sl.live {
			kept = append(kept, sl)
		}
	}
	s.slots = kept
	s.tombstones = 0
}

// notify delivers the entity's current value to the slots present when
// the pass starts. current is read per slot, so a subscriber that sets the
// entity again leaves the remaining slots on the newer value. Slots added
// during the pass wait for the next one; slots tombstoned during the pass
// are skipped.
func (s *subscribers[T]) notify(current func() T) (int, error) {
	s.compact()
	pass := s.slots
	delivered := 0
	for _, sl := range pass {
		if !sl.live {
			continue
		}
		delivered++
		if err := sl.fn(current()); err != nil {
			return delivered, err
		}
	}
	return delivered, nil
}

func (s *subscribers[T]) len() int {
	return len(s.slots)
}

// Subscription is the handle for one subscriber slot.
type Subscription struct {
	cancel func()
	active bool
}

// Unsubscribe tombstones the slot. It is safe to call more than once and
// from inside a notification.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active {
		return
	}
	s.active = false
	s.cancel()
}

// Active reports whether the slot still receives notifications.
func (s *Subscription) Active() bool {
	return s != nil && s.active
}
