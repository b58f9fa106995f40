package logger

import (
	"context"
	"log/slog"
)

// loggerContextKey is an unexported type so no other package can collide
// with the context key.
type loggerContextKey struct{}

// WithLogger returns a context carrying the given logger. Handlers and
// middleware use this to pass request-scoped loggers (for example with a
// trace ID attached) down through services and stores.
//
// Panics if logger is nil: storing a nil logger would turn every downstream
// FromContext call into a nil dereference far from the actual mistake.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		panic("logger.WithLogger called with nil logger")
	}
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext returns the logger stored in ctx, falling back to
// slog.Default() when the context carries none. The result is always safe
// to call.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if l, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// FromContextOrDefault returns the logger stored in ctx, falling back to the
// given default logger, then to slog.Default() when that is nil too.
func FromContextOrDefault(ctx context.Context, defaultLogger *slog.Logger) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	if defaultLogger != nil {
		return defaultLogger
	}
	return slog.Default()
}
