package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

var std atomic.Pointer[Logger]

func init() {
	l := New(os.Stderr)
	std.Store(&l)
}

// Default returns the process-wide Logger.
func Default() Logger { return *std.Load() }

// SetDefault replaces the process-wide Logger.
func SetDefault(l Logger) { std.Store(&l) }

// Config applies opts over the configuration of the process-wide Logger
// and returns the result.
func Config(opts ...Option) Logger {
	l := Default().Wrap(opts...)
	SetDefault(l)

	return l
}

// TraceContext logs at [LevelTrace] with the process-wide Logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelTrace, msg, attrs)
}

// DebugContext logs at [LevelDebug] with the process-wide Logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelDebug, msg, attrs)
}

// InfoContext logs at [LevelInfo] with the process-wide Logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelInfo, msg, attrs)
}

// WarnContext logs at [LevelWarn] with the process-wide Logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelWarn, msg, attrs)
}

// ErrorContext logs at [LevelError] with the process-wide Logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelError, msg, attrs)
}
