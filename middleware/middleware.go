// Package middleware provides composable request middleware for the
// MCP server engine: logging, panic recovery, timeouts, request ids,
// rate limiting, and OpenTelemetry instrumentation.
package middleware

import (
	"context"
	"time"

	"github.com/logiscapedev/mcp/jsonrpc"
)

// HandlerFunc is the signature middleware wraps.
type HandlerFunc func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error)

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middleware in order, executing the first middleware
// first.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// DefaultStack returns the recommended production middleware stack:
// panic recovery, request id injection, and logging.
func DefaultStack(logger Logger) []Middleware {
	return []Middleware{
		Recover(),
		RequestID(),
		Logging(logger),
	}
}

// DefaultStackWithTimeout returns the default stack plus a request
// deadline.
func DefaultStackWithTimeout(logger Logger, timeout time.Duration) []Middleware {
	return []Middleware{
		Recover(),
		RequestID(),
		Timeout(timeout),
		Logging(logger),
	}
}
