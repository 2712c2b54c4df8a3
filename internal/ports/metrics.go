package ports

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type portsMetricsCollection struct {
	invocationCount    metric.Int64Counter
	invocationDuration metric.Float64Histogram
}

var metrics portsMetricsCollection

func init() {
	const name = "r6stats/ports"
	meter := otel.Meter(name)

	invocationCount, err := meter.Int64Counter(
		"ports/invocation_count",
		metric.WithDescription("Total number of stats invocations"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create invocation count metric: %w", err))
	}

	invocationDuration, err := meter.Float64Histogram(
		"ports/invocation_duration_seconds",
		metric.WithDescription("Time until the output document was written"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create invocation duration metric: %w", err))
	}

	metrics = portsMetricsCollection{
		invocationCount:    invocationCount,
		invocationDuration: invocationDuration,
	}
}

func recordInvocation(ctx context.Context, outcome string, duration time.Duration) {
	attributesOption := metric.WithAttributes(
		attribute.String("outcome", outcome),
	)

	metrics.invocationCount.Add(ctx, 1, attributesOption)
	metrics.invocationDuration.Record(ctx, duration.Seconds(), attributesOption)
}
