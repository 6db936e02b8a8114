package observability

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZerologObserver writes events through a zerolog.Logger.
type ZerologObserver struct {
	logger zerolog.Logger
}

// NewZerologObserver returns an observer writing through logger.
func NewZerologObserver(logger zerolog.Logger) *ZerologObserver {
	return &ZerologObserver{logger: logger}
}

// NewConsoleZerologObserver writes human-readable lines to stderr.
func NewConsoleZerologObserver() *ZerologObserver {
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return NewZerologObserver(zerolog.New(out).With().Timestamp().Logger())
}

func (o *ZerologObserver) OnEvent(_ context.Context, event Event) {
	e := o.logger.WithLevel(zerologLevel(event.Level))
	if e == nil {
		return
	}
	e = e.Str("source", event.Source)
	if !event.Timestamp.IsZero() {
		e = e.Time("event_time", event.Timestamp)
	}
	for k, v := range event.Data {
		e = e.Interface(k, v)
	}
	e.Msg(string(event.Type))
}

func zerologLevel(l Level) zerolog.Level {
	switch {
	case l <= 4:
		return zerolog.TraceLevel
	case l <= 8:
		return zerolog.DebugLevel
	case l <= 12:
		return zerolog.InfoLevel
	case l <= 16:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
