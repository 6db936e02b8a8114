package entity

// Option configures a single entity at construction.
type Option func(*options)

type options struct {
	metadata any
	name     string
}

// WithMetadata attaches a record that plugin predicates and taps receive.
// See New for the accepted shapes. Struct fields are keyed by their json
// tag and keep their Go types.
func WithMetadata(meta any) Option {
	return func(o *options) { o.metadata = meta }
}

// WithName sets the display name used in logs, events and devtools.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}
