// internal/logging/context.go
package logging

import (
	"context"
	"regexp"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request.id", requestID))
	}

	return fields
}

type requestCtxKey struct{}
type loggerCtxKey struct{}

const maxIDLen = 128

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// RequestIDFromContext extracts request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return r
	}
	return ""
}

// WithRequestID adds request ID to context.
// IDs come from client headers, so empty, oversized or non [A-Za-z0-9_-] IDs
// are dropped and ctx is returned unchanged.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" || len(requestID) > maxIDLen || !idPattern.MatchString(requestID) {
		return ctx
	}
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return Nop()
}
