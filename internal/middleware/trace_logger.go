// Package middleware carries the HTTP middleware shared by the ops API
// routes. Currently that is trace-aware logging: the otelhttp handler opens
// the span, WithTraceLogger stamps its IDs onto a request-scoped logger, and
// handlers pull that logger back out with LoggerFromRequest.
package middleware

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type loggerKey struct{}

// WithTraceLogger returns middleware that stores a logger annotated with the
// active span's trace and span IDs in the request context. Requests without
// a valid span pass through unchanged.
func WithTraceLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			span := trace.SpanFromContext(r.Context())
			if span.SpanContext().IsValid() {
				traced := logger.With(
					zap.String("trace_id", span.SpanContext().TraceID().String()),
					zap.String("span_id", span.SpanContext().SpanID().String()),
				)
				r = r.WithContext(context.WithValue(r.Context(), loggerKey{}, traced))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggerFromContext returns the trace-annotated logger stored by
// WithTraceLogger, or the fallback when none is present. The fallback still
// picks up trace IDs if the context carries a valid span, which covers code
// paths reached outside the middleware chain.
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return logger
	}
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		return fallback.With(
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return fallback
}

// LoggerFromRequest is LoggerFromContext for HTTP handlers.
func LoggerFromRequest(r *http.Request, fallback *zap.Logger) *zap.Logger {
	return LoggerFromContext(r.Context(), fallback)
}
