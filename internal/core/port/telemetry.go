package port

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry lets the core emit spans and metrics without knowing the exporter.
type Telemetry interface {
	StartServiceSpan(ctx context.Context, service string, operation string, attrs []attribute.KeyValue) (context.Context, trace.Span)

	RecordServiceOperation(ctx context.Context, service string, operation string, duration time.Duration, err error)

	RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{})
}
