package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/entity/entity"
	"github.com/tailored-agentic-units/entity/plugin"
	"github.com/tailored-agentic-units/entity/plugin/schema"
)

type settings struct {
	Theme    string `json:"theme"`
	FontSize int    `json:"font_size"`
}

const settingsSchema = `{
	"type": "object",
	"required": ["theme", "font_size"],
	"properties": {
		"theme": {"enum": ["light", "dark"]},
		"font_size": {"type": "integer", "minimum": 8, "maximum": 48}
	}
}`

// seed creates the demo entities. The clock ticks from a background
// goroutine that posts onto the runtime queue, so every Set still runs on
// the goroutine draining it.
func seed(rt *entity.Runtime, interval time.Duration) error {
	clock, err := entity.New(rt, entity.Value(time.Now().Format(time.RFC3339)), entity.WithName("clock"))
	if err != nil {
		return err
	}

	ticks, err := entity.New(rt, entity.Value(0),
		entity.WithName("ticks"),
		entity.WithMetadata(plugin.Metadata{"trace": false}),
	)
	if err != nil {
		return err
	}
	clock.Subscribe(func(string) error {
		return ticks.Update(func(prev int, _ ...any) (int, error) { return prev + 1, nil })
	})

	_, err = entity.New(rt, entity.Value(settings{Theme: "dark", FontSize: 14}),
		entity.WithName("settings"),
		entity.WithMetadata(plugin.Metadata{schema.MetadataKey: settingsSchema}),
	)
	if err != nil {
		return err
	}

	_, err = entity.New(rt, entity.Deferred(func(ctx context.Context) (string, error) {
		select {
		case <-time.After(500 * time.Millisecond):
			return fmt.Sprintf("hello from %s", rt.Name()), nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}), entity.WithName("greeting"))
	if err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-rt.Context().Done():
				return
			case now := <-ticker.C:
				posted := rt.Queue().Post(func() {
					if err := clock.Set(now.Format(time.RFC3339)); err != nil {
						rt.Logger().Warn("clock update failed", "error", err)
					}
				})
				if !posted {
					return
				}
			}
		}
	}()
	return nil
}
