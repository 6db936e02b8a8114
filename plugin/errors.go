package plugin

import "errors"

// Sentinel errors for the plugin catalog.
var (
	ErrNotFound      = errors.New("plugin not found")
	ErrAlreadyExists = errors.New("plugin already registered")
	ErrEmptyName     = errors.New("plugin name is empty")
)
