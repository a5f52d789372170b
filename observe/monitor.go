package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// OperationStats accumulates timing and outcome counters for one named
// operation. Counters grow for the process lifetime; there is no decay.
type OperationStats struct {
	CallCount    int64
	SuccessCount int64
	ErrorCount   int64
	TotalTime    time.Duration
	MinTime      time.Duration
	MaxTime      time.Duration
	AvgTime      time.Duration
}

// Monitor records per-operation timings and exposes aggregate
// statistics. It also feeds the equivalent OpenTelemetry instruments so
// external collectors see the same data.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Ownership: Metrics returns a snapshot copy, never a live reference.
type Monitor struct {
	mu  sync.Mutex
	ops map[string]*OperationStats

	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMonitor creates a performance monitor. A nil meter is replaced with
// a no-op meter so recording always works.
func NewMonitor(meter metric.Meter) (*Monitor, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("noop")
	}

	totalCount, err := meter.Int64Counter(
		"infer.call.total",
		metric.WithDescription("Total number of guarded remote calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"infer.call.errors",
		metric.WithDescription("Total number of failed remote calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"infer.call.duration_ms",
		metric.WithDescription("Remote call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		ops:          make(map[string]*OperationStats),
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// Record accumulates one call outcome into the operation's statistics.
func (m *Monitor) Record(ctx context.Context, operation string, duration time.Duration, success bool) {
	m.mu.Lock()
	stats, ok := m.ops[operation]
	if !ok {
		stats = &OperationStats{MinTime: duration, MaxTime: duration}
		m.ops[operation] = stats
	}

	stats.CallCount++
	if success {
		stats.SuccessCount++
	} else {
		stats.ErrorCount++
	}
	stats.TotalTime += duration
	if duration < stats.MinTime {
		stats.MinTime = duration
	}
	if duration > stats.MaxTime {
		stats.MaxTime = duration
	}
	stats.AvgTime = stats.TotalTime / time.Duration(stats.CallCount)
	m.mu.Unlock()

	opt := metric.WithAttributes(attribute.String("operation", operation))
	m.totalCount.Add(ctx, 1, opt)
	if !success {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// Metrics returns a snapshot copy of the full statistics table.
func (m *Monitor) Metrics() map[string]OperationStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]OperationStats, len(m.ops))
	for name, stats := range m.ops {
		snapshot[name] = *stats
	}
	return snapshot
}

// ErrorRate returns the error fraction across all recorded operations,
// or 0 when nothing has been recorded yet.
func (m *Monitor) ErrorRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var calls, errors int64
	for _, stats := range m.ops {
		calls += stats.CallCount
		errors += stats.ErrorCount
	}
	if calls == 0 {
		return 0
	}
	return float64(errors) / float64(calls)
}

// Observe times a unit of work and records its outcome under the given
// operation name. It is a composable wrapper: the operation's error is
// returned unchanged.
func (m *Monitor) Observe(ctx context.Context, operation string, op func(context.Context) error) error {
	start := time.Now()
	err := op(ctx)
	m.Record(ctx, operation, time.Since(start), err == nil)
	return err
}
