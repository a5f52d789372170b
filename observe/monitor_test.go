package observe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newMonitor(t *testing.T) *Monitor {
	t.Helper()
	m, err := NewMonitor(nil)
	if err != nil {
		t.Fatalf("NewMonitor() error = %v", err)
	}
	return m
}

func TestMonitor_Record(t *testing.T) {
	m := newMonitor(t)
	ctx := context.Background()

	m.Record(ctx, "chat", 100*time.Millisecond, true)
	m.Record(ctx, "chat", 300*time.Millisecond, true)
	m.Record(ctx, "chat", 200*time.Millisecond, false)

	stats := m.Metrics()["chat"]
	if stats.CallCount != 3 {
		t.Errorf("CallCount = %d, want 3", stats.CallCount)
	}
	if stats.SuccessCount != 2 {
		t.Errorf("SuccessCount = %d, want 2", stats.SuccessCount)
	}
	if stats.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", stats.ErrorCount)
	}
	if stats.MinTime != 100*time.Millisecond {
		t.Errorf("MinTime = %v, want 100ms", stats.MinTime)
	}
	if stats.MaxTime != 300*time.Millisecond {
		t.Errorf("MaxTime = %v, want 300ms", stats.MaxTime)
	}
	if stats.TotalTime != 600*time.Millisecond {
		t.Errorf("TotalTime = %v, want 600ms", stats.TotalTime)
	}
	if stats.AvgTime != 200*time.Millisecond {
		t.Errorf("AvgTime = %v, want 200ms", stats.AvgTime)
	}
}

func TestMonitor_PerOperationIsolation(t *testing.T) {
	m := newMonitor(t)
	ctx := context.Background()

	m.Record(ctx, "chat", time.Millisecond, true)
	m.Record(ctx, "embedding", time.Millisecond, false)

	metrics := m.Metrics()
	if len(metrics) != 2 {
		t.Fatalf("len(metrics) = %d, want 2", len(metrics))
	}
	if metrics["chat"].ErrorCount != 0 {
		t.Errorf("chat ErrorCount = %d, want 0", metrics["chat"].ErrorCount)
	}
	if metrics["embedding"].ErrorCount != 1 {
		t.Errorf("embedding ErrorCount = %d, want 1", metrics["embedding"].ErrorCount)
	}
}

func TestMonitor_MetricsIsSnapshot(t *testing.T) {
	m := newMonitor(t)
	ctx := context.Background()

	m.Record(ctx, "chat", time.Millisecond, true)

	snapshot := m.Metrics()
	mutated := snapshot["chat"]
	mutated.CallCount = 999
	snapshot["chat"] = mutated

	if got := m.Metrics()["chat"].CallCount; got != 1 {
		t.Errorf("CallCount = %d after snapshot mutation, want 1", got)
	}
}

func TestMonitor_ErrorRate(t *testing.T) {
	m := newMonitor(t)
	ctx := context.Background()

	if got := m.ErrorRate(); got != 0 {
		t.Errorf("ErrorRate() = %v with no data, want 0", got)
	}

	m.Record(ctx, "a", time.Millisecond, true)
	m.Record(ctx, "a", time.Millisecond, false)
	m.Record(ctx, "b", time.Millisecond, false)
	m.Record(ctx, "b", time.Millisecond, false)

	if got := m.ErrorRate(); got != 0.75 {
		t.Errorf("ErrorRate() = %v, want 0.75", got)
	}
}

func TestMonitor_Observe(t *testing.T) {
	m := newMonitor(t)
	ctx := context.Background()

	opErr := errors.New("boom")
	err := m.Observe(ctx, "chat", func(context.Context) error {
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Errorf("Observe() error = %v, want the operation's error unchanged", err)
	}

	if err := m.Observe(ctx, "chat", func(context.Context) error { return nil }); err != nil {
		t.Errorf("Observe() error = %v", err)
	}

	stats := m.Metrics()["chat"]
	if stats.CallCount != 2 || stats.ErrorCount != 1 {
		t.Errorf("stats = %+v, want 2 calls with 1 error", stats)
	}
}
