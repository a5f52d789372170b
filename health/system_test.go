package health

import (
	"context"
	"testing"
	"time"

	"github.com/jonwraymond/inferops/observe"
	"github.com/jonwraymond/inferops/resilience"
)

func newTestMonitor(t *testing.T) *observe.Monitor {
	t.Helper()
	m, err := observe.NewMonitor(nil)
	if err != nil {
		t.Fatalf("NewMonitor() error = %v", err)
	}
	return m
}

func recordCalls(m *observe.Monitor, successes, failures int) {
	ctx := context.Background()
	for i := 0; i < successes; i++ {
		m.Record(ctx, "op", time.Millisecond, true)
	}
	for i := 0; i < failures; i++ {
		m.Record(ctx, "op", time.Millisecond, false)
	}
}

func TestSystemMonitor_HealthyBaseline(t *testing.T) {
	s := NewSystemMonitor(SystemConfig{}, NewTracker(), newTestMonitor(t))

	snapshot := s.Snapshot()
	if snapshot.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy with no activity", snapshot.Status)
	}
	if snapshot.ErrorRate != 0 {
		t.Errorf("ErrorRate = %v, want 0", snapshot.ErrorRate)
	}
}

func TestSystemMonitor_ErrorRateThresholds(t *testing.T) {
	tests := []struct {
		name      string
		successes int
		failures  int
		want      Status
	}{
		{"below degraded", 95, 5, StatusHealthy},       // 5%
		{"at degraded", 90, 10, StatusDegraded},        // 10%
		{"between thresholds", 70, 30, StatusDegraded}, // 30%
		{"at critical", 50, 50, StatusCritical},        // 50%
		{"above critical", 20, 80, StatusCritical},     // 80%
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := newTestMonitor(t)
			recordCalls(monitor, tt.successes, tt.failures)

			s := NewSystemMonitor(SystemConfig{}, NewTracker(), monitor)
			if got := s.Snapshot().Status; got != tt.want {
				t.Errorf("Status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSystemMonitor_OpenBreakerDegrades(t *testing.T) {
	s := NewSystemMonitor(SystemConfig{}, NewTracker(), newTestMonitor(t))

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 1})
	s.RegisterBreaker("chat", cb)

	if got := s.Snapshot().Status; got != StatusHealthy {
		t.Fatalf("Status = %v, want healthy with a closed breaker", got)
	}

	_ = cb.Execute(context.Background(), func(context.Context) error {
		return context.DeadlineExceeded
	})

	snapshot := s.Snapshot()
	if snapshot.Status != StatusDegraded {
		t.Errorf("Status = %v, want degraded with an open breaker", snapshot.Status)
	}
	if snapshot.Breakers["chat"] != "open" {
		t.Errorf("Breakers[chat] = %q, want open", snapshot.Breakers["chat"])
	}
}

func TestSystemMonitor_DegradedServiceDegrades(t *testing.T) {
	tracker := NewTracker()
	s := NewSystemMonitor(SystemConfig{}, tracker, newTestMonitor(t))

	tracker.MarkDegraded("chat", "connection refused")

	snapshot := s.Snapshot()
	if snapshot.Status != StatusDegraded {
		t.Errorf("Status = %v, want degraded", snapshot.Status)
	}
	if snapshot.Services["chat"] != "degraded: connection refused" {
		t.Errorf("Services[chat] = %q, want the degraded mark", snapshot.Services["chat"])
	}
}

func TestSystemMonitor_CustomThresholds(t *testing.T) {
	monitor := newTestMonitor(t)
	recordCalls(monitor, 80, 20) // 20%

	s := NewSystemMonitor(SystemConfig{
		DegradedErrorRate: 0.05,
		CriticalErrorRate: 0.15,
	}, NewTracker(), monitor)

	if got := s.Snapshot().Status; got != StatusCritical {
		t.Errorf("Status = %v, want critical at 20%% with a 15%% threshold", got)
	}
}

func TestSystemMonitor_SnapshotCarriesOperations(t *testing.T) {
	monitor := newTestMonitor(t)
	recordCalls(monitor, 3, 1)

	s := NewSystemMonitor(SystemConfig{}, NewTracker(), monitor)
	snapshot := s.Snapshot()

	stats, ok := snapshot.Operations["op"]
	if !ok {
		t.Fatal("Operations missing recorded op")
	}
	if stats.CallCount != 4 || stats.ErrorCount != 1 {
		t.Errorf("Operations[op] = %+v, want 4 calls and 1 error", stats)
	}
	if snapshot.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}

func TestSystemMonitor_NilCollaborators(t *testing.T) {
	s := NewSystemMonitor(SystemConfig{}, nil, nil)

	snapshot := s.Snapshot()
	if snapshot.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy with nothing registered", snapshot.Status)
	}
}

func TestSystemMonitor_Check(t *testing.T) {
	monitor := newTestMonitor(t)
	recordCalls(monitor, 0, 10)

	s := NewSystemMonitor(SystemConfig{}, NewTracker(), monitor)
	result := s.Check(context.Background())
	if result.Status != StatusCritical {
		t.Errorf("Check().Status = %v, want critical at 100%% errors", result.Status)
	}
	if result.Error == nil {
		t.Error("Check().Error = nil, want non-nil for critical")
	}
}
