package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"todohub/internal/core/port"
)

// NoOpProbe is a probe that does nothing - useful for testing or when telemetry is disabled
type NoOpProbe struct{}

func NewNoOpProbe() port.Telemetry {
	return &NoOpProbe{}
}

// Tracing methods - return no-op span
func (p *NoOpProbe) StartStoreSpan(ctx context.Context, operation string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func (p *NoOpProbe) StartServiceSpan(ctx context.Context, operation string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func (p *NoOpProbe) RecordStoreOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	// No operation
}

func (p *NoOpProbe) RecordServiceOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	// No operation
}

func (p *NoOpProbe) RecordBusinessEvent(ctx context.Context, event string, todoID int, metadata map[string]any) {
	// No operation
}

func (p *NoOpProbe) RecordToolInvocation(ctx context.Context, tool string, outcome string, duration time.Duration) {
	// No operation
}

func (p *NoOpProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]any) {
	// No operation
}

// TelemetryOperation is a helper to measure operation duration
type TelemetryOperation struct {
	probe     port.Telemetry
	ctx       context.Context
	startTime time.Time
	operation string
}

// StartOperation begins measuring a store operation
func StartOperation(probe port.Telemetry, ctx context.Context, operation string) *TelemetryOperation {
	return &TelemetryOperation{
		probe:     probe,
		ctx:       ctx,
		startTime: time.Now(),
		operation: operation,
	}
}

// End marks the operation as completed
func (op *TelemetryOperation) End(err error) {
	if op.probe != nil {
		op.probe.RecordStoreOperation(op.ctx, op.operation, time.Since(op.startTime), err)
	}
}
