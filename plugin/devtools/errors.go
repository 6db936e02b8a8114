package devtools

import "errors"

// Sentinel errors for the inspector server.
var (
	ErrAlreadyStarted = errors.New("devtools server already started")
	ErrStopped        = errors.New("devtools server stopped")
)
