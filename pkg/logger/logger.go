// Package logger provides the application's structured logger and
// shared slog attribute helpers.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates the root slog.Logger.
// Level comes from LOG_LEVEL (debug/info/warn/error, case-insensitive,
// default info). GO_ENV=production switches to the JSON handler.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Scope returns a "scope" attribute used to tag log lines with the
// emitting component (e.g. "scheduler", "jobs.queue").
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Error returns an "error" attribute for an error value.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}
