package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// IntoContext attaches a request-scoped logger to the context. Handlers down
// the chain retrieve it with FromContext so every log line carries the same
// request fields.
func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger carried by the context. When the context
// has none, the process-wide logger is returned so callers never get nil.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
