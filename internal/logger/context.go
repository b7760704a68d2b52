package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// With stores a logger in the context, usually enriched with chat or
// request fields.
func With(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From extracts the logger from the context, zap.NewNop() when absent.
func From(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}

	return zap.NewNop()
}
