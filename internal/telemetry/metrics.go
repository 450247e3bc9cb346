package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MonitorMetrics records instrument values for monitoring runs. All methods
// are safe for concurrent use and are no-ops when OTEL is disabled (the
// global provider is then the SDK no-op implementation).
type MonitorMetrics struct {
	windowsProcessed metric.Int64Counter
	runDuration      metric.Float64Histogram
	driftScore       metric.Float64Histogram
}

var (
	monitorMetricsOnce sync.Once
	monitorMetrics     *MonitorMetrics
)

// Monitor returns the process-wide monitoring metrics, creating the
// instruments on first use.
func Monitor() *MonitorMetrics {
	monitorMetricsOnce.Do(func() {
		meter := Meter("nagare/monitor")

		windowsProcessed, _ := meter.Int64Counter("nagare.windows.processed",
			metric.WithDescription("Windows processed, by verdict"),
		)
		runDuration, _ := meter.Float64Histogram("nagare.run.duration",
			metric.WithDescription("Duration of a full monitoring run"),
			metric.WithUnit("s"),
		)
		driftScore, _ := meter.Float64Histogram("nagare.drift.score",
			metric.WithDescription("Per-feature drift scores, by metric kind"),
		)

		monitorMetrics = &MonitorMetrics{
			windowsProcessed: windowsProcessed,
			runDuration:      runDuration,
			driftScore:       driftScore,
		}
	})
	return monitorMetrics
}

// RecordWindow counts one processed window with its verdict.
func (m *MonitorMetrics) RecordWindow(ctx context.Context, verdict string) {
	m.windowsProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("verdict", verdict),
	))
}

// RecordRunDuration records the wall-clock duration of a monitoring run.
func (m *MonitorMetrics) RecordRunDuration(ctx context.Context, d time.Duration) {
	m.runDuration.Record(ctx, d.Seconds())
}

// RecordDriftScore records one feature's drift score.
func (m *MonitorMetrics) RecordDriftScore(ctx context.Context, metricKind string, score float64) {
	m.driftScore.Record(ctx, score, metric.WithAttributes(
		attribute.String("metric", metricKind),
	))
}
