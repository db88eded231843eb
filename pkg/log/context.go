package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// Ctx returns the request-scoped logger, or the global one.
func Ctx(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return L()
}

// WithUser returns a context whose logger carries the acting user.
// Anonymous callers (id 0) leave the context untouched.
func WithUser(ctx context.Context, userID uint, username string) context.Context {
	if userID == 0 {
		return ctx
	}
	l := Ctx(ctx).With().Uint(FieldUserID, userID).Str(FieldUsername, username).Logger()
	return WithLogger(ctx, l)
}
