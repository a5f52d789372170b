package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// HealthyMark is the tracker value for a healthy service.
const HealthyMark = "healthy"

// Tracker is the per-service health map, mutated after every guarded
// call. Values are either HealthyMark or "degraded: <reason>". Readers
// only ever receive copies.
type Tracker struct {
	mu       sync.RWMutex
	services map[string]string
	updated  map[string]time.Time
}

// NewTracker creates an empty service health tracker.
func NewTracker() *Tracker {
	return &Tracker{
		services: make(map[string]string),
		updated:  make(map[string]time.Time),
	}
}

// MarkHealthy records a successful call for the service.
func (t *Tracker) MarkHealthy(service string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.services[service] = HealthyMark
	t.updated[service] = time.Now()
}

// MarkDegraded records a failed call for the service with its reason.
func (t *Tracker) MarkDegraded(service, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.services[service] = fmt.Sprintf("degraded: %s", reason)
	t.updated[service] = time.Now()
}

// Status returns the recorded mark for a service and whether the
// service has been seen at all.
func (t *Tracker) Status(service string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	mark, ok := t.services[service]
	return mark, ok
}

// Snapshot returns a copy of the full service health map.
func (t *Tracker) Snapshot() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make(map[string]string, len(t.services))
	for service, mark := range t.services {
		snapshot[service] = mark
	}
	return snapshot
}

// DegradedCount returns how many tracked services are degraded.
func (t *Tracker) DegradedCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, mark := range t.services {
		if mark != HealthyMark {
			count++
		}
	}
	return count
}

// Name returns the checker name.
func (t *Tracker) Name() string {
	return "services"
}

// Check reports degraded when any tracked service is degraded, with the
// full map in the details.
func (t *Tracker) Check(_ context.Context) Result {
	snapshot := t.Snapshot()

	degraded := 0
	details := make(map[string]any, len(snapshot))
	for service, mark := range snapshot {
		details[service] = mark
		if mark != HealthyMark {
			degraded++
		}
	}

	if degraded > 0 {
		return Degraded(fmt.Sprintf("%d of %d services degraded", degraded, len(snapshot))).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("all %d services healthy", len(snapshot))).WithDetails(details)
}

// Ensure Tracker implements Checker
var _ Checker = (*Tracker)(nil)
