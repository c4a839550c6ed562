package middleware

import (
	"context"
	"time"

	"github.com/logiscapedev/mcp/jsonrpc"
)

// Timeout returns middleware that enforces a request deadline. If the
// handler does not complete within d, the context is canceled and
// context.DeadlineExceeded propagates as the handler error.
func Timeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, req)
		}
	}
}
