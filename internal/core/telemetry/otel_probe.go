package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"usersapi/internal/core/port"
)

const tracerName = "usersapi"

// OTELProbe implements port.Telemetry with OpenTelemetry spans and the
// Prometheus collectors in AppMetrics.
type OTELProbe struct {
	logger  *zap.Logger
	metrics *AppMetrics
}

func NewOTELProbe(logger *zap.Logger, metrics *AppMetrics) port.Telemetry {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OTELProbe{
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OTELProbe) StartServiceSpan(ctx context.Context, service string, operation string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("service.%s.%s", service, operation)

	standardAttrs := []attribute.KeyValue{
		attribute.String("service.name", service),
		attribute.String("service.operation", operation),
		attribute.String("component", "service"),
	}

	standardAttrs = append(standardAttrs, attrs...)

	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(standardAttrs...))
}

func (p *OTELProbe) RecordServiceOperation(ctx context.Context, service string, operation string, duration time.Duration, err error) {
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

	if p.metrics != nil {
		p.metrics.RecordUserOperation(ctx, operation, duration, err)
	}
}

func (p *OTELProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Error(err),
	}

	for key, value := range metadata {
		fields = append(fields, zap.Any(key, value))
	}

	p.logger.Error("Operation failed", fields...)
}
