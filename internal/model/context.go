package model

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// WithRequestID attaches a request id used to correlate log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// EnsureRequestID returns ctx carrying a request id and the id itself.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRequestID(ctx, id), id
}
