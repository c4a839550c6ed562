package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/logiscapedev/mcp/jsonrpc"
)

// Logger is the interface for structured logging.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logging returns middleware that logs request details. Successful
// requests log at info level, failures at error level.
func Logging(logger Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			fields := []Field{
				F("method", req.Method),
				F("duration", time.Since(start)),
			}
			if requestID := RequestIDFromContext(ctx); requestID != "" {
				fields = append(fields, F("request_id", requestID))
			}

			if err != nil {
				fields = append(fields, F("error", err.Error()))
				logger.Error("request failed", fields...)
			} else {
				logger.Info("request completed", fields...)
			}

			return resp, err
		}
	}
}

// SlogLogger adapts a log/slog Logger to the Logger interface.
type SlogLogger struct {
	L *slog.Logger
}

// NewSlogLogger wraps l; a nil l uses slog.Default.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{L: l}
}

func (s *SlogLogger) Debug(msg string, fields ...Field) { s.L.Debug(msg, slogArgs(fields)...) }
func (s *SlogLogger) Info(msg string, fields ...Field)  { s.L.Info(msg, slogArgs(fields)...) }
func (s *SlogLogger) Warn(msg string, fields ...Field)  { s.L.Warn(msg, slogArgs(fields)...) }
func (s *SlogLogger) Error(msg string, fields ...Field) { s.L.Error(msg, slogArgs(fields)...) }

func slogArgs(fields []Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}
