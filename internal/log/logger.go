package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	once     sync.Once
	logger   *slog.Logger
	levelVar slog.LevelVar
)

// Setup initializes the global logger on the first call and adjusts the
// active level on every call, so the level can be retuned at runtime. Logs
// go to stderr so stdout stays clean for CLI output. An invalid level
// falls back to INFO.
func Setup(level string) {
	levelVar.Set(parseLevel(level))
	once.Do(func() {
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: &levelVar,
		})
		logger = slog.New(handler)
		slog.SetDefault(logger)
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the configured logger, or a default one if Setup hasn't been called.
func Get() *slog.Logger {
	if logger == nil {
		Setup("INFO")
	}
	return logger
}

// WithComponent returns a logger with the component field set.
func WithComponent(name string) *slog.Logger {
	return Get().With(slog.String("component", name))
}

// WithRun returns a logger with the session run id field set.
func WithRun(id string) *slog.Logger {
	return Get().With(slog.String("run_id", id))
}

// WithCommand returns a logger with the command kind field set.
func WithCommand(kind string) *slog.Logger {
	return Get().With(slog.String("command", kind))
}

// Info logs at INFO level.
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Warn logs at WARN level.
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs at ERROR level.
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}
