// Package logger builds the process logger for the commands. Level and
// format come from the environment so they can be set in .env.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds a stderr logger from CITYFILL_LOG_LEVEL (debug, info, warn,
// error; default info) and CITYFILL_LOG_FORMAT (text or json; default text)
// and installs it as the slog default.
func Setup() *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(os.Getenv("CITYFILL_LOG_LEVEL"))}
	var h slog.Handler
	if strings.EqualFold(os.Getenv("CITYFILL_LOG_FORMAT"), "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

// Level parses a level name. Unknown names mean info.
func Level(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
