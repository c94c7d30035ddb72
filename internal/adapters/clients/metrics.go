package clients

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcomes recorded on the downstream call metrics.
const (
	outcomeSuccess     = "success"
	outcomeError       = "error"
	outcomeCircuitOpen = "circuit_open"
	outcomeRateLimited = "rate_limited"
)

// callMetrics counts downstream calls and how long they took, retries and
// backoff included.
type callMetrics struct {
	service  string
	duration metric.Float64Histogram
	calls    metric.Int64Counter
}

func newCallMetrics(meter metric.Meter, service string) (*callMetrics, error) {
	duration, err := meter.Float64Histogram("downstream.call.duration",
		metric.WithDescription("Wall time of downstream calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("downstream.call.duration: %w", err)
	}

	calls, err := meter.Int64Counter("downstream.calls",
		metric.WithDescription("Downstream calls by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("downstream.calls: %w", err)
	}

	return &callMetrics{service: service, duration: duration, calls: calls}, nil
}

// record adds one call. status is zero when no response arrived.
func (m *callMetrics) record(ctx context.Context, method string, status int, elapsed time.Duration, outcome string) {
	attrs := make([]attribute.KeyValue, 0, 4)
	attrs = append(attrs,
		attribute.String("peer.service", m.service),
		attribute.String("http.method", method),
		attribute.String("outcome", outcome),
	)

	if status != 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	set := metric.WithAttributeSet(attribute.NewSet(attrs...))
	m.duration.Record(ctx, elapsed.Seconds(), set)
	m.calls.Add(ctx, 1, set)
}
