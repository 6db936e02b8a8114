package schema

import "errors"

// Sentinel errors for validation.
var (
	ErrInvalidValue  = errors.New("value does not match schema")
	ErrInvalidSchema = errors.New("invalid schema")
)
