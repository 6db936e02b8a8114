// Package trace is a plugin that reports every init and set of an entity
// to an observer. Entities opt out with metadata "trace": false.
package trace

import (
	"context"

	"github.com/tailored-agentic-units/entity/observability"
	"github.com/tailored-agentic-units/entity/plugin"
)

// Name is the catalog name of the plugin.
const Name = "trace"

// Event types emitted by the plugin.
const (
	EventInit observability.EventType = "trace.init"
	EventSet  observability.EventType = "trace.set"
)

// New returns the plugin. A nil observer falls back to NoOpObserver.
func New(observer observability.Observer, level observability.Level) plugin.Plugin {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	report := func(typ observability.EventType) plugin.Tap {
		return func(t plugin.Target, _ plugin.Metadata) error {
			observability.Emit(context.Background(), observer, typ, level, t.Name(), map[string]any{
				"id":    t.ID(),
				"ready": t.Ready(),
				"value": t.Snapshot(),
			})
			return nil
		}
	}

	ignore := plugin.OptOut(Name)
	return plugin.Plugin{
		Name:             Name,
		OnInit:           report(EventInit),
		OnSet:            report(EventSet),
		ShouldIgnoreInit: ignore,
		ShouldIgnoreSet:  ignore,
	}
}
