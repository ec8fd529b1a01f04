package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON slog.Logger on stdout. debug lowers the level from Info
// to Debug.
func New(debug bool) *slog.Logger {
	return NewWithWriter(os.Stdout, debug)
}

// NewWithWriter is New with an explicit writer, for tests.
func NewWithWriter(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Component tags every record of the derived logger with the subsystem name,
// so log lines can be filtered per component.
func Component(l *slog.Logger, name string) *slog.Logger {
	return l.With("component", name)
}
