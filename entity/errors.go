package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the factory and runtime.
var (
	ErrNoInitialValue     = errors.New("entity requires an initial value")
	ErrInvalidMetadata    = errors.New("entity metadata must be a record")
	ErrNilRuntime         = errors.New("entity requires a runtime")
	ErrNilUpdater         = errors.New("nil updater")
	ErrChannelClosed      = errors.New("initial value channel closed")
	ErrUnsupportedFormat  = errors.New("unsupported config format")
	ErrContinuationDenied = errors.New("dispatch queue rejected continuation")
)

// ValidationError reports a construction input that was rejected before
// any tap wiring or registration took place.
type ValidationError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid entity %s: %v", e.Field, e.Err)
}

// Unwrap enables errors.Is and errors.As on the underlying sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
