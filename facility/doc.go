// Package facility wires the cache, resilience, classification,
// degradation and health components into one explicitly constructed,
// process-wide instance.
//
// Nothing in this module relies on package-level mutable state: a
// program builds one Facility (or several, in tests) and passes it to
// whatever orchestrator needs guarded calls.
package facility
