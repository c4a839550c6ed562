package middleware

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/logiscapedev/mcp/jsonrpc"
)

// RateLimitOption configures the rate limiter.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	keyFunc func(*jsonrpc.Request) string
	logger  Logger
}

// WithRateLimitKeyFunc sets a function to extract a rate limit key from
// requests, enabling per-method or per-client limits.
func WithRateLimitKeyFunc(fn func(*jsonrpc.Request) string) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.keyFunc = fn
	}
}

// WithRateLimitLogger sets the logger for rate limit events.
func WithRateLimitLogger(l Logger) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.logger = l
	}
}

// RateLimit returns middleware that limits request rate with a token
// bucket. rate is requests per second; burst allows short spikes above
// it. Rejected requests fail with a RateLimited error (-32003).
func RateLimit(rate int, burst int, opts ...RateLimitOption) Middleware {
	cfg := &rateLimitConfig{
		keyFunc: func(_ *jsonrpc.Request) string { return "global" },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    burst,
		Interval: time.Second,
	})

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			key := cfg.keyFunc(req)

			if !limiter.Allow(ctx, key) {
				if cfg.logger != nil {
					cfg.logger.Warn("rate limit exceeded",
						F("method", req.Method),
						F("key", key),
					)
				}
				return nil, jsonrpc.NewRateLimited("rate limit exceeded")
			}

			return next(ctx, req)
		}
	}
}

// RateLimitByMethod returns rate limiting middleware with per-method
// buckets.
func RateLimitByMethod(rate int, burst int, opts ...RateLimitOption) Middleware {
	allOpts := append([]RateLimitOption{
		WithRateLimitKeyFunc(func(req *jsonrpc.Request) string {
			return req.Method
		}),
	}, opts...)
	return RateLimit(rate, burst, allOpts...)
}
