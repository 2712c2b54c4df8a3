package ubisoft

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type ubisoftMetricsCollection struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
}

var metrics ubisoftMetricsCollection

func init() {
	meter := otel.Meter("r6stats/ubisoft")

	requestCount, err := meter.Int64Counter(
		"ubisoft/request_count",
		metric.WithDescription("Requests sent to the ubisoft API"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create request count metric: %w", err))
	}

	requestDuration, err := meter.Float64Histogram(
		"ubisoft/request_duration_seconds",
		metric.WithDescription("Time until the ubisoft API response body was read"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create request duration metric: %w", err))
	}

	metrics = ubisoftMetricsCollection{
		requestCount:    requestCount,
		requestDuration: requestDuration,
	}
}
