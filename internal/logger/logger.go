package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel converts a string level name to slog.Level.
// Supported values: debug, info, warn, error (case-insensitive).
// Returns slog.LevelInfo for unrecognized values.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Init installs the global text logger on stdout.
// This should be called once at application startup.
func Init(level slog.Level) {
	InitWriter(os.Stdout, level)
}

// InitWriter installs the global text logger on w. The CLI logs to stderr so
// translations on stdout stay clean.
func InitWriter(w io.Writer, level slog.Level) {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.LevelKey {
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			}
			return attr
		},
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, opts)))
}

// Debug logs a message at DEBUG level.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs a message at INFO level.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a message at WARN level.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs a message at ERROR level.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}
