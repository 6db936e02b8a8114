package entity

import "github.com/tailored-agentic-units/entity/observability"

// Event types emitted by entities and runtimes.
const (
	EventCreate        observability.EventType = "entity.create"
	EventRegister      observability.EventType = "entity.register"
	EventInit          observability.EventType = "entity.init"
	EventInitDeferred  observability.EventType = "entity.init.deferred"
	EventInitFailed    observability.EventType = "entity.init.failed"
	EventSet           observability.EventType = "entity.set"
	EventNotify        observability.EventType = "entity.notify"
	EventRuntimeReset  observability.EventType = "runtime.reset"
	EventRuntimeClosed observability.EventType = "runtime.close"
)
