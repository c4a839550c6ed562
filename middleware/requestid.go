package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/logiscapedev/mcp/jsonrpc"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const requestIDKey contextKey = "requestID"

// RequestID returns middleware that injects a unique request id into
// the context. An id already present in the context is preserved.
func RequestID() Middleware {
	return RequestIDWithGenerator(uuid.NewString)
}

// RequestIDWithGenerator returns middleware that uses a custom id
// generator.
func RequestIDWithGenerator(generator func() string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			if existing := RequestIDFromContext(ctx); existing != "" {
				return next(ctx, req)
			}
			ctx = ContextWithRequestID(ctx, generator())
			return next(ctx, req)
		}
	}
}

// RequestIDFromContext returns the request id from the context, or the
// empty string if none is set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithRequestID returns a new context with the request id set.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
