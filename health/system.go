package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/inferops/observe"
	"github.com/jonwraymond/inferops/resilience"
)

// SystemConfig configures the system health derivation.
type SystemConfig struct {
	// DegradedErrorRate is the overall error fraction at or above which
	// the system reports degraded.
	// Default: 0.10
	DegradedErrorRate float64

	// CriticalErrorRate is the overall error fraction at or above which
	// the system reports critical.
	// Default: 0.50
	CriticalErrorRate float64
}

// SystemMonitor derives one overall status from circuit breaker states,
// the service health tracker and the performance monitor's error rate.
type SystemMonitor struct {
	config  SystemConfig
	tracker *Tracker
	monitor *observe.Monitor

	mu       sync.RWMutex
	breakers map[string]*resilience.CircuitBreaker
}

// SystemHealth is a point-in-time snapshot of the whole facility.
type SystemHealth struct {
	Status     Status                            `json:"-"`
	StatusText string                            `json:"status"`
	ErrorRate  float64                           `json:"error_rate"`
	Breakers   map[string]string                 `json:"circuit_breakers"`
	Services   map[string]string                 `json:"services"`
	Operations map[string]observe.OperationStats `json:"operations"`
	Timestamp  time.Time                         `json:"timestamp"`
}

// NewSystemMonitor creates a system monitor over the given tracker and
// performance monitor.
func NewSystemMonitor(config SystemConfig, tracker *Tracker, monitor *observe.Monitor) *SystemMonitor {
	// Apply defaults
	if config.DegradedErrorRate <= 0 {
		config.DegradedErrorRate = 0.10
	}
	if config.CriticalErrorRate <= 0 {
		config.CriticalErrorRate = 0.50
	}

	return &SystemMonitor{
		config:   config,
		tracker:  tracker,
		monitor:  monitor,
		breakers: make(map[string]*resilience.CircuitBreaker),
	}
}

// RegisterBreaker adds a named circuit breaker to the snapshot.
func (s *SystemMonitor) RegisterBreaker(name string, cb *resilience.CircuitBreaker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakers[name] = cb
}

// Snapshot collects breaker states, service marks and operation
// statistics, and derives the overall status.
func (s *SystemMonitor) Snapshot() SystemHealth {
	s.mu.RLock()
	breakers := make(map[string]string, len(s.breakers))
	anyOpen := false
	for name, cb := range s.breakers {
		state := cb.State()
		breakers[name] = state.String()
		if state != resilience.StateClosed {
			anyOpen = true
		}
	}
	s.mu.RUnlock()

	var services map[string]string
	degradedServices := 0
	if s.tracker != nil {
		services = s.tracker.Snapshot()
		degradedServices = s.tracker.DegradedCount()
	}

	var errorRate float64
	var operations map[string]observe.OperationStats
	if s.monitor != nil {
		errorRate = s.monitor.ErrorRate()
		operations = s.monitor.Metrics()
	}

	status := StatusHealthy
	switch {
	case errorRate >= s.config.CriticalErrorRate:
		status = StatusCritical
	case errorRate >= s.config.DegradedErrorRate || anyOpen || degradedServices > 0:
		status = StatusDegraded
	}

	return SystemHealth{
		Status:     status,
		StatusText: status.String(),
		ErrorRate:  errorRate,
		Breakers:   breakers,
		Services:   services,
		Operations: operations,
		Timestamp:  time.Now().UTC(),
	}
}

// Name returns the checker name.
func (s *SystemMonitor) Name() string {
	return "system"
}

// Check adapts the snapshot to the Checker interface.
func (s *SystemMonitor) Check(_ context.Context) Result {
	snapshot := s.Snapshot()

	details := map[string]any{
		"error_rate":       snapshot.ErrorRate,
		"circuit_breakers": snapshot.Breakers,
		"services":         snapshot.Services,
	}

	switch snapshot.Status {
	case StatusCritical:
		return Critical(fmt.Sprintf("error rate %.2f over critical threshold", snapshot.ErrorRate), ErrCheckFailed).WithDetails(details)
	case StatusDegraded:
		return Degraded("system degraded").WithDetails(details)
	default:
		return Healthy("system healthy").WithDetails(details)
	}
}

// Ensure the system monitor composes with the aggregator.
var _ Checker = (*SystemMonitor)(nil)
