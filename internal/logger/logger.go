// Package logger provides the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the global structured logger.
	Log *slog.Logger
	// logWriter is the rotating file writer, nil when logging to stderr.
	logWriter *lumberjack.Logger
)

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Init configures the global logger. With an empty path, text logs go to
// stderr; otherwise JSON logs go to a rotated file at path.
func Init(level string, path string) error {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	if path == "" {
		setLogger(slog.NewTextHandler(os.Stderr, opts))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	logWriter = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	}
	setLogger(slog.NewJSONHandler(logWriter, opts))
	return nil
}

// InitWriter points the global logger at w. Used by tests and embedders.
func InitWriter(w io.Writer, level string) {
	setLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

func setLogger(h slog.Handler) {
	Log = slog.New(h)
	slog.SetDefault(Log)
}

// Close closes the log file, if any.
func Close() {
	if logWriter != nil {
		logWriter.Close()
		logWriter = nil
	}
}

func getLogger() *slog.Logger {
	if Log != nil {
		return Log
	}
	return slog.Default()
}

// Debug logs a debug message
func Debug(msg string, args ...any) { getLogger().Debug(msg, args...) }

// Info logs an info message
func Info(msg string, args ...any) { getLogger().Info(msg, args...) }

// Warn logs a warning message
func Warn(msg string, args ...any) { getLogger().Warn(msg, args...) }

// Error logs an error message
func Error(msg string, args ...any) { getLogger().Error(msg, args...) }

// With creates a new logger with additional attributes
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}
