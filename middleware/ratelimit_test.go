package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/logiscapedev/mcp/jsonrpc"
)

func TestRateLimit(t *testing.T) {
	t.Run("allows requests within the burst", func(t *testing.T) {
		handler := RateLimit(1, 5)(okHandler)

		for i := 0; i < 5; i++ {
			if _, err := handler(context.Background(), testRequest("ping")); err != nil {
				t.Fatalf("request %d rejected: %v", i, err)
			}
		}
	})

	t.Run("rejects beyond the burst with RateLimited", func(t *testing.T) {
		handler := RateLimit(1, 2)(okHandler)

		handler(context.Background(), testRequest("ping"))
		handler(context.Background(), testRequest("ping"))

		_, err := handler(context.Background(), testRequest("ping"))
		var rpcErr *jsonrpc.Error
		if !errors.As(err, &rpcErr) {
			t.Fatalf("err = %v, want *jsonrpc.Error", err)
		}
		if rpcErr.Code != jsonrpc.CodeRateLimited {
			t.Errorf("code = %d, want %d", rpcErr.Code, jsonrpc.CodeRateLimited)
		}
	})

	t.Run("logs rejections when a logger is set", func(t *testing.T) {
		logger := newCaptureLogger()
		handler := RateLimit(1, 1, WithRateLimitLogger(logger))(okHandler)

		handler(context.Background(), testRequest("ping"))
		handler(context.Background(), testRequest("ping"))

		if len(logger.warns) != 1 {
			t.Errorf("expected 1 warning, got %d", len(logger.warns))
		}
	})

	t.Run("custom key function partitions buckets", func(t *testing.T) {
		handler := RateLimit(1, 1, WithRateLimitKeyFunc(func(req *jsonrpc.Request) string {
			return req.Method
		}))(okHandler)

		if _, err := handler(context.Background(), testRequest("tools/list")); err != nil {
			t.Fatalf("first tools/list rejected: %v", err)
		}
		// A different method draws from its own bucket.
		if _, err := handler(context.Background(), testRequest("ping")); err != nil {
			t.Fatalf("ping rejected: %v", err)
		}
		// The exhausted bucket stays exhausted.
		if _, err := handler(context.Background(), testRequest("tools/list")); err == nil {
			t.Error("expected second tools/list to be rejected")
		}
	})
}

func TestRateLimitByMethod(t *testing.T) {
	handler := RateLimitByMethod(1, 1)(okHandler)

	if _, err := handler(context.Background(), testRequest("tools/call")); err != nil {
		t.Fatalf("first call rejected: %v", err)
	}
	if _, err := handler(context.Background(), testRequest("prompts/get")); err != nil {
		t.Fatalf("other method rejected: %v", err)
	}
	if _, err := handler(context.Background(), testRequest("tools/call")); err == nil {
		t.Error("expected repeat call to be rejected")
	}
}
