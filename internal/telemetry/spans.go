package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/pablasso/planfirst"

// Attribute keys
const (
	KeyPlanID        = "planfirst.plan.id"
	KeyPhaseID       = "planfirst.phase.id"
	KeyTaskID        = "planfirst.task.id"
	KeyTaskCount     = "planfirst.task.count"
	KeyAttempt       = "planfirst.phase.attempt"
	KeyOverallStatus = "planfirst.verification.status"
	KeyStrictMode    = "planfirst.verification.strict"
)

// StartVerifySpan starts the span covering one verification run.
func StartVerifySpan(ctx context.Context, planID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String(KeyPlanID, planID))
	return otel.Tracer(instrumentationName).Start(ctx, "planfirst.verify",
		trace.WithAttributes(attrs...),
	)
}

// StartPhaseSpan starts the span covering one attempt at running a phase.
func StartPhaseSpan(ctx context.Context, planID, phaseID string, attempt int) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "planfirst.phase",
		trace.WithAttributes(
			attribute.String(KeyPlanID, planID),
			attribute.String(KeyPhaseID, phaseID),
			attribute.Int(KeyAttempt, attempt),
		),
	)
}

// EndWithError records err on span, if any, and ends it.
func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
