// Package observe provides logging, metrics and tracing for guarded
// remote calls, plus an in-process performance monitor that accumulates
// per-operation timing statistics for the lifetime of the process.
package observe
