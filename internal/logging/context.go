package logging

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

type traceIDKey struct{}

// TraceIDField is the log field carrying the trace ID.
const TraceIDField = "trace_id"

// GenerateTraceID returns a new ULID trace ID.
func GenerateTraceID() string {
	return ulid.Make().String()
}

// TraceIDFromContext returns the trace ID stored in ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// GetOrGenerateTraceID returns the trace ID in ctx or a fresh one.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	return GenerateTraceID()
}

// ContextWithTraceID stores traceID in ctx.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// FromContext returns the logger attached to ctx with its trace ID field.
// Without an attached logger the result is disabled.
func FromContext(ctx context.Context) zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return *l
	}
	if id := TraceIDFromContext(ctx); id != "" {
		return l.With().Str(TraceIDField, id).Logger()
	}
	return *l
}
