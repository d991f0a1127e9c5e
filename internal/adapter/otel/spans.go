package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "adforge"

// StartRunSpan starts a span covering a whole evaluation run.
func StartRunSpan(ctx context.Context, runID, adID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("ad.id", adID),
		),
	)
}

// StartStageSpan starts a span for one scheduling stage.
func StartStageSpan(ctx context.Context, runID string, stage, degree, actors int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "stage",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("stage.index", stage),
			attribute.Int("stage.degree", degree),
			attribute.Int("stage.actors", actors),
		),
	)
}

// StartTaskSpan starts a span for one actor scoring task.
func StartTaskSpan(ctx context.Context, runID, actorID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "task",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("actor.id", actorID),
		),
	)
}
