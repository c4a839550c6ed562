package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/logiscapedev/mcp/jsonrpc"
)

func TestTimeout(t *testing.T) {
	t.Run("cancels slow handlers", func(t *testing.T) {
		handler := Timeout(10 * time.Millisecond)(func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return okHandler(ctx, req)
			}
		})

		_, err := handler(context.Background(), testRequest("tools/call"))
		if err != context.DeadlineExceeded {
			t.Errorf("err = %v, want deadline exceeded", err)
		}
	})

	t.Run("fast handlers complete normally", func(t *testing.T) {
		handler := Timeout(time.Second)(okHandler)

		resp, err := handler(context.Background(), testRequest("ping"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Result != "ok" {
			t.Errorf("result = %v", resp.Result)
		}
	})

	t.Run("deadline is visible to the handler", func(t *testing.T) {
		handler := Timeout(time.Minute)(func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected a deadline on the context")
			}
			return nil, nil
		})
		handler(context.Background(), testRequest("ping"))
	})
}
