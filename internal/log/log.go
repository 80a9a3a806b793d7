// Package log provides structured logging for facetarget.
// It wraps slog with sensible defaults for a CLI whose stdout is reserved
// for results.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileEnv names an optional rotating log file that receives a copy of
// every record.
const LogFileEnv = "FACETARGET_LOG_FILE"

var logger atomic.Pointer[slog.Logger]

// Init builds the global logger writing to w and installs it as the slog
// default. Valid levels: "debug", "info", "warn", "error"
func Init(w io.Writer, level string) *slog.Logger {
	l := New(w, level)
	logger.Store(l)
	slog.SetDefault(l)
	return l
}

// New builds a logger writing to w, plus the rotating file named by
// FACETARGET_LOG_FILE when set.
func New(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	if path := os.Getenv(LogFileEnv); path != "" {
		w = io.MultiWriter(w, &lumberjack.Logger{
			Filename:   path,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    10, // MB
			MaxAge:     7,
			MaxBackups: 3,
		})
	}

	// Use JSON in production, text in development
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// L returns the global logger, initializing it on stderr at info level
// when Init has not run.
func L() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return Init(os.Stderr, "info")
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}
