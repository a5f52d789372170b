package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WithSpan runs a guarded call inside a client span named after the
// operation. The operation's error is recorded on the span and returned
// unchanged, so the wrapper composes with the resilience layers.
func WithSpan(ctx context.Context, tracer trace.Tracer, operation string, op func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("operation", operation)),
	)
	defer span.End()

	err := op(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
