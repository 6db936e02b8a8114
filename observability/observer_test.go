package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/entity/observability"
)

type captureObserver struct {
	events []observability.Event
}

func (c *captureObserver) OnEvent(_ context.Context, e observability.Event) {
	c.events = append(c.events, e)
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info", level: observability.LevelInfo, want: "INFO"},
		{name: "warning", level: observability.LevelWarning, want: "WARN"},
		{name: "error", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.String())
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  slog.Level
	}{
		{level: observability.LevelVerbose, want: slog.LevelDebug},
		{level: observability.LevelInfo, want: slog.LevelInfo},
		{level: observability.LevelWarning, want: slog.LevelWarn},
		{level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.SlogLevel(), "Level(%d)", tt.level)
	}
}

func TestEmit(t *testing.T) {
	obs := &captureObserver{}
	observability.Emit(context.Background(), obs, "entity.set", observability.LevelInfo, "counter", map[string]any{"n": 1})

	require.Len(t, obs.events, 1)
	e := obs.events[0]
	assert.Equal(t, observability.EventType("entity.set"), e.Type)
	assert.Equal(t, "counter", e.Source)
	assert.Equal(t, 1, e.Data["n"])
	assert.False(t, e.Timestamp.IsZero())
}

func TestEmit_NilObserver(t *testing.T) {
	assert.NotPanics(t, func() {
		observability.Emit(context.Background(), nil, "entity.set", observability.LevelInfo, "x", nil)
	})
}

func TestMultiObserver_FanOutAndNilFiltering(t *testing.T) {
	a, b := &captureObserver{}, &captureObserver{}
	multi := observability.NewMultiObserver(nil, a, nil, b)

	require.Equal(t, 2, multi.Len())

	multi.OnEvent(context.Background(), observability.Event{Type: "entity.init"})

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestSlogObserver_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.Level
		minLevel  slog.Level
		expectLog bool
	}{
		{name: "verbose at debug", level: observability.LevelVerbose, minLevel: slog.LevelDebug, expectLog: true},
		{name: "verbose at info", level: observability.LevelVerbose, minLevel: slog.LevelInfo, expectLog: false},
		{name: "warning at warn", level: observability.LevelWarning, minLevel: slog.LevelWarn, expectLog: true},
		{name: "info at error", level: observability.LevelInfo, minLevel: slog.LevelError, expectLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.minLevel}))

			observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
				Type:  "entity.set",
				Level: tt.level,
			})

			assert.Equal(t, tt.expectLog, buf.Len() > 0, "buf: %q", buf.String())
		})
	}
}

func TestSlogObserver_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:      "entity.set",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "counter",
		Data:      map[string]any{"subscribers": 3},
	})

	out := buf.String()
	for _, want := range []string{"entity.set", "source=counter", "subscribers=3"} {
		assert.Contains(t, out, want)
	}
}

func TestZerologObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := observability.NewZerologObserver(zerolog.New(&buf).Level(zerolog.InfoLevel))

	obs.OnEvent(context.Background(), observability.Event{
		Type:   "entity.init",
		Level:  observability.LevelVerbose,
		Source: "hidden",
	})
	require.Zero(t, buf.Len(), "debug event written at info level: %q", buf.String())

	obs.OnEvent(context.Background(), observability.Event{
		Type:   "entity.init.failed",
		Level:  observability.LevelError,
		Source: "profile",
		Data:   map[string]any{"error": "boom"},
	})

	out := buf.String()
	for _, want := range []string{`"message":"entity.init.failed"`, `"source":"profile"`, `"error":"boom"`, `"level":"error"`} {
		assert.Contains(t, out, want)
	}
}

func TestRegistry_Defaults(t *testing.T) {
	for _, name := range []string{"noop", "slog", "zerolog"} {
		obs, err := observability.GetObserver(name)
		assert.NoError(t, err, name)
		assert.NotNil(t, obs, name)
	}
}

func TestRegistry_Unknown(t *testing.T) {
	_, err := observability.GetObserver("nonexistent")
	assert.ErrorIs(t, err, observability.ErrUnknownObserver)
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	custom := &captureObserver{}
	observability.RegisterObserver("test-capture", custom)

	obs, err := observability.GetObserver("test-capture")
	require.NoError(t, err)
	obs.OnEvent(context.Background(), observability.Event{Type: "entity.create"})

	assert.Len(t, custom.events, 1)
	assert.Contains(t, observability.ObserverNames(), "test-capture")
}
