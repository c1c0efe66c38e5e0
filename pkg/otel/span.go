package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "voice-assistant"

// WithSpan runs fn inside a child span named name. Errors returned by fn are
// recorded on the span and passed through unchanged.
func WithSpan(ctx context.Context, name string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	tracer := otel.Tracer(tracerName)

	spanCtx, span := tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	err := fn(spanCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// WithDBSpan wraps a MongoDB operation in a client span carrying the collection
// and operation names. fn returns the number of documents touched.
func WithDBSpan(ctx context.Context, collection, operation string, fn func(context.Context) (int64, error)) error {
	tracer := otel.Tracer(tracerName)

	spanCtx, span := tracer.Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemKey.String("mongodb"),
			semconv.DBOperationKey.String(operation),
			attribute.String("db.collection", collection),
		),
	)
	defer span.End()

	count, err := fn(spanCtx)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("db.error", true))
		return err
	}

	span.SetAttributes(attribute.Bool("db.error", false))
	if count > 0 {
		span.SetAttributes(attribute.Int64("db.result.count", count))
	}
	return nil
}
