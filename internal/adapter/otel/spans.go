package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lightlogger"

// StartValidateSpan starts a span covering validation of one submission.
func StartValidateSpan(ctx context.Context, projectID string, items int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "logs.validate",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.Int("logs.items", items),
		),
	)
}

// StartSinkSpan starts a span for handing accepted events to the sink.
func StartSinkSpan(ctx context.Context, projectID string, events int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "logs.sink",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.Int("logs.events", events),
		),
	)
}

// StartSchemaUpdateSpan starts a span for a schema replacement.
func StartSchemaUpdateSpan(ctx context.Context, projectID string, fields int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "schema.update",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.Int("schema.fields", fields),
		),
	)
}
