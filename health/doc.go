// Package health tracks per-service health and derives an overall
// system status from circuit breaker states, service health marks and
// the recorded error rate.
//
// The package has three layers: Checker is the unit health probe,
// Aggregator fans out over registered checkers, and SystemMonitor
// condenses everything into one healthy/degraded/critical answer. HTTP
// handlers expose liveness, readiness, detailed health and metrics.
package health
