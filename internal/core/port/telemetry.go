package port

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry lets the core emit spans, metrics and events without knowing the
// backend.
type Telemetry interface {
	StartStoreSpan(ctx context.Context, operation string, attrs []attribute.KeyValue) (context.Context, trace.Span)
	StartServiceSpan(ctx context.Context, operation string, attrs []attribute.KeyValue) (context.Context, trace.Span)

	RecordStoreOperation(ctx context.Context, operation string, duration time.Duration, err error)
	RecordServiceOperation(ctx context.Context, operation string, duration time.Duration, err error)

	RecordBusinessEvent(ctx context.Context, event string, todoID int, metadata map[string]any)
	RecordToolInvocation(ctx context.Context, tool string, outcome string, duration time.Duration)

	RecordError(ctx context.Context, operation string, err error, metadata map[string]any)
}
