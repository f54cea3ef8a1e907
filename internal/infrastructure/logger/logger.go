package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	log *slog.Logger
}

func NewLogger() *Logger {
	return New(os.Stdout, "info")
}

func New(w io.Writer, level string) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{log: slog.New(handler)}
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	return New(io.Discard, "error")
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{log: l.log.With(args...)}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log.Debug(msg, args...)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.log.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log.Warn(msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.log.Error(msg, args...)
}

func parseLevel(level string) slog.Level {
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
