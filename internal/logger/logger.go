package logger

import (
	"io"
	"log/slog"
	"os"
)

// NewJSONLogger builds a slog logger writing JSON records to w at the given level.
func NewJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// InitJSONLogger configures the default slog logger to write JSON to stdout.
// Debug records are emitted only when debug is true.
func InitJSONLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(NewJSONLogger(os.Stdout, level))
}
