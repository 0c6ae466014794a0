package logger

import (
	"log/slog"
	"strings"
)

// New builds a logger with the given handler constructor at the configured
// level. Level strings are the usual debug/info/warn/error; anything else
// means info.
func New(level string, newHandler func(slog.Level) slog.Handler) *slog.Logger {
	return slog.New(newHandler(ParseLevel(level)))
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
