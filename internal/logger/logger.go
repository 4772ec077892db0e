// Package logger configures log/slog for the service: JSON output with
// source locations, so marketplace events can be traced through log
// aggregation without extra parsing.
package logger

import (
	"log/slog"
	"os"
)

// Setup installs the global slog logger.
func Setup(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})))
}

// ParseLevel converts a string log level ("debug", "info", "warn",
// "error") to slog.Level. Unrecognized values fall back to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
