package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

var defaultLogger *slog.Logger

// Init configures the process-wide logger. Production gets JSON on stdout,
// everything else a colored text handler.
func Init(env string) {
	InitWithLevel(env, "")
}

// InitWithLevel is Init with an explicit level name (debug, info, warn, error).
// An empty level falls back to info in production and debug elsewhere.
func InitWithLevel(env, level string) {
	Setup(env, level, "")
}

// Setup is InitWithLevel with an explicit format; "json" forces the JSON
// handler outside production too.
func Setup(env, level, format string) {
	defaultLogger = slog.New(newHandler(os.Stdout, env, level, format))
	slog.SetDefault(defaultLogger)
}

func newHandler(w io.Writer, env, level, format string) slog.Handler {
	if env == "production" || format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level, slog.LevelInfo)})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      ParseLevel(level, slog.LevelDebug),
		TimeFormat: time.Kitchen,
	})
}

// ParseLevel maps a level name to slog.Level, returning fallback for unknown names.
func ParseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}

// L is a short alias for LoggerWrapper.
func L() *slog.Logger {
	return LoggerWrapper()
}
