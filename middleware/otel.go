package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/logiscapedev/mcp/jsonrpc"
)

const instrumentationName = "github.com/logiscapedev/mcp"

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
	skipMethods    map[string]bool
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(c *otelConfig) {
		c.meterProvider = mp
	}
}

// WithServiceName sets the service name attached to telemetry.
func WithServiceName(name string) OTelOption {
	return func(c *otelConfig) {
		c.serviceName = name
	}
}

// WithSkipMethods excludes methods from tracing, e.g. ping.
func WithSkipMethods(methods ...string) OTelOption {
	return func(c *otelConfig) {
		for _, m := range methods {
			c.skipMethods[m] = true
		}
	}
}

// OTel returns middleware that records a span per request plus request
// count, latency, and error count metrics.
func OTel(opts ...OTelOption) Middleware {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		serviceName:    "mcp-server",
		skipMethods:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := cfg.tracerProvider.Tracer(instrumentationName)
	meter := cfg.meterProvider.Meter(instrumentationName)

	requestCounter, _ := meter.Int64Counter(
		"mcp.server.requests",
		metric.WithDescription("Total number of MCP requests"),
		metric.WithUnit("{request}"),
	)
	requestDuration, _ := meter.Float64Histogram(
		"mcp.server.request.duration",
		metric.WithDescription("Duration of MCP requests"),
		metric.WithUnit("ms"),
	)
	errorCounter, _ := meter.Int64Counter(
		"mcp.server.errors",
		metric.WithDescription("Total number of MCP errors"),
		metric.WithUnit("{error}"),
	)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			if cfg.skipMethods[req.Method] {
				return next(ctx, req)
			}

			ctx, span := tracer.Start(ctx, "mcp."+req.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("mcp.method", req.Method),
					attribute.String("service.name", cfg.serviceName),
				),
			)
			defer span.End()

			if reqID := RequestIDFromContext(ctx); reqID != "" {
				span.SetAttributes(attribute.String("mcp.request_id", reqID))
			}

			attrs := []attribute.KeyValue{
				attribute.String("mcp.method", req.Method),
				attribute.String("service.name", cfg.serviceName),
			}
			requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

			start := time.Now()
			resp, err := next(ctx, req)
			requestDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
				metric.WithAttributes(attrs...))

			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())

				var rpcErr *jsonrpc.Error
				if errors.As(err, &rpcErr) {
					span.SetAttributes(attribute.Int("mcp.error_code", rpcErr.Code))
					errorCounter.Add(ctx, 1, metric.WithAttributes(
						append(attrs, attribute.Int("mcp.error_code", rpcErr.Code))...,
					))
				} else {
					errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
				}
			case resp != nil && resp.Error != nil:
				span.SetStatus(codes.Error, resp.Error.Message)
				span.SetAttributes(attribute.Int("mcp.error_code", resp.Error.Code))
				errorCounter.Add(ctx, 1, metric.WithAttributes(
					append(attrs, attribute.Int("mcp.error_code", resp.Error.Code))...,
				))
			default:
				span.SetStatus(codes.Ok, "")
			}

			return resp, err
		}
	}
}
