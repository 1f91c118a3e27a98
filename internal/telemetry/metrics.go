package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	verificationsCounter metric.Int64Counter
	verifyDuration       metric.Float64Histogram
	phaseAttemptsCounter metric.Int64Counter
)

// initMetrics creates the instruments from the global meter provider. It
// must run after Init installs that provider.
func initMetrics() error {
	meter := otel.Meter(instrumentationName)

	var err error
	if verificationsCounter, err = meter.Int64Counter(
		"planfirst_verifications_total",
		metric.WithDescription("Verification runs by overall status"),
		metric.WithUnit("{run}"),
	); err != nil {
		return err
	}

	if verifyDuration, err = meter.Float64Histogram(
		"planfirst_verification_duration_seconds",
		metric.WithDescription("Wall time of a verification run"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}

	if phaseAttemptsCounter, err = meter.Int64Counter(
		"planfirst_phase_attempts_total",
		metric.WithDescription("Phase execution attempts by outcome"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return err
	}

	return nil
}

// RecordVerification records the outcome of one verification run.
func RecordVerification(ctx context.Context, status string, duration time.Duration) {
	if verificationsCounter == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(KeyOverallStatus, status))
	verificationsCounter.Add(ctx, 1, attrs)
	verifyDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordPhaseAttempt records the outcome of one phase execution attempt.
func RecordPhaseAttempt(ctx context.Context, phaseID, outcome string) {
	if phaseAttemptsCounter == nil {
		return
	}
	phaseAttemptsCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(KeyPhaseID, phaseID),
			attribute.String("planfirst.phase.outcome", outcome),
		),
	)
}
