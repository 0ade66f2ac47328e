package operations

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aqdaily/internal/infrastructure"
)

// traceOperation opens the root span of a run.
func traceOperation(ctx context.Context, state *OperationState) (context.Context, trace.Span) {
	return infrastructure.StartSpan(ctx, "operation.execute",
		attribute.String("operation.id", state.ID),
		attribute.String("operation.day", state.Window.Day()),
	)
}

// traceStep opens a child span for one step.
func traceStep(ctx context.Context, operationID string, step Step) (context.Context, trace.Span) {
	return infrastructure.StartSpan(ctx, "operation.step."+step.ID(),
		attribute.String("operation.id", operationID),
		attribute.String("step.id", step.ID()),
		attribute.String("step.name", step.Name()),
	)
}

// endSpan records err, if any, and ends span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
