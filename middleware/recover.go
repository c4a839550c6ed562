package middleware

import (
	"context"
	"fmt"

	"github.com/logiscapedev/mcp/jsonrpc"
)

// PanicHandler is called when a panic is recovered.
type PanicHandler func(ctx context.Context, req *jsonrpc.Request, panicVal any) (*jsonrpc.Response, error)

// Recover returns middleware that catches handler panics and converts
// them to internal errors, keeping the session loop alive.
func Recover() Middleware {
	return RecoverWithHandler(defaultPanicHandler)
}

// RecoverWithHandler returns middleware that catches panics and calls
// the provided handler, for custom logging or alerting.
func RecoverWithHandler(handler PanicHandler) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *jsonrpc.Request) (resp *jsonrpc.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp, err = handler(ctx, req, r)
				}
			}()
			return next(ctx, req)
		}
	}
}

func defaultPanicHandler(_ context.Context, _ *jsonrpc.Request, panicVal any) (*jsonrpc.Response, error) {
	return nil, jsonrpc.NewInternalError(fmt.Sprintf("panic: %v", panicVal))
}
