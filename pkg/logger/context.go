package logger

import (
	"context"
	"log/slog"
)

// scopedKey carries the request-scoped logger. The empty struct type keeps it
// from colliding with string keys set by other packages.
type scopedKey struct{}

// With scopes the context's logger by the given attributes, so handlers further
// down the chain log trace and user fields without passing them around.
func With(ctx context.Context, args ...any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(args) == 0 {
		return ctx
	}
	return context.WithValue(ctx, scopedKey{}, From(ctx).With(args...))
}

// From returns the scoped logger, falling back to the process logger.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if scoped, ok := ctx.Value(scopedKey{}).(*slog.Logger); ok && scoped != nil {
			return scoped
		}
	}
	return LoggerWrapper()
}
