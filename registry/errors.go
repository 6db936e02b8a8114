package registry

import "errors"

// Sentinel errors for registration.
var (
	ErrNilEntry  = errors.New("nil registry entry")
	ErrDuplicate = errors.New("entry already registered")
)
