package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"todohub/internal/core/domain"
	"todohub/internal/core/port"
)

const tracerName = "todohub"

// OTELProbe implements Telemetry using OpenTelemetry spans, Prometheus
// counters and trace-correlated zap logs.
type OTELProbe struct {
	logger  *otelzap.Logger
	metrics *AppMetrics
}

func NewOTELProbe(logger *otelzap.Logger, metrics *AppMetrics) port.Telemetry {
	return &OTELProbe{
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OTELProbe) StartStoreSpan(ctx context.Context, operation string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	standardAttrs := append([]attribute.KeyValue{
		attribute.String("store.operation", operation),
		attribute.String("component", "store"),
	}, attrs...)

	return otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("store.todo.%s", operation), trace.WithAttributes(standardAttrs...))
}

func (p *OTELProbe) StartServiceSpan(ctx context.Context, operation string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	standardAttrs := append([]attribute.KeyValue{
		attribute.String("service.operation", operation),
		attribute.String("component", "service"),
	}, attrs...)

	return otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("service.todo.%s", operation), trace.WithAttributes(standardAttrs...))
}

func (p *OTELProbe) RecordStoreOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func (p *OTELProbe) RecordServiceOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	outcome := Outcome(err)

	if p.metrics != nil {
		p.metrics.RecordTodoOperation(ctx, operation, outcome)
	}

	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}

	span.RecordError(err)

	// Expected outcomes stay at warn level and do not mark the span failed.
	if outcome == OutcomeError {
		span.SetStatus(codes.Error, err.Error())
		p.logger.Ctx(ctx).Error("Service operation failed",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Error(err))

		return
	}

	p.logger.Ctx(ctx).Warn("Service operation rejected",
		zap.String("operation", operation),
		zap.String("outcome", outcome),
		zap.Error(err))
}

func (p *OTELProbe) RecordBusinessEvent(ctx context.Context, event string, todoID int, metadata map[string]any) {
	attrs := []attribute.KeyValue{
		attribute.String("event", event),
		attribute.Int("todo.id", todoID),
	}

	for key, value := range metadata {
		attrs = append(attrs, toAttribute(key, value))
	}

	trace.SpanFromContext(ctx).AddEvent(event, trace.WithAttributes(attrs...))

	p.logger.Ctx(ctx).Info("Business event recorded",
		zap.String("event", event),
		zap.Int("todo_id", todoID),
		zap.Any("metadata", metadata))
}

func (p *OTELProbe) RecordToolInvocation(ctx context.Context, tool string, outcome string, duration time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordToolInvocation(ctx, tool, outcome, duration)
	}

	p.logger.Ctx(ctx).Info("Tool invoked",
		zap.String("tool", tool),
		zap.String("outcome", outcome),
		zap.Duration("duration", duration))
}

func (p *OTELProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]any) {
	p.logger.Ctx(ctx).Error("Operation error recorded",
		zap.String("operation", operation),
		zap.Error(err),
		zap.Any("metadata", metadata))
}

const (
	OutcomeSuccess    = "success"
	OutcomeNotFound   = "not_found"
	OutcomeValidation = "validation_error"
	OutcomeInvalid    = "invalid_arguments"
	OutcomeError      = "error"
)

// Outcome classifies err into the label used by metrics and logs.
func Outcome(err error) string {
	var validationErr *domain.ValidationError

	switch {
	case err == nil:
		return OutcomeSuccess
	case domain.IsNotFound(err):
		return OutcomeNotFound
	case errors.As(err, &validationErr):
		return OutcomeValidation
	default:
		return OutcomeError
	}
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
