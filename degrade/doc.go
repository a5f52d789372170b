// Package degrade provides the graceful degradation router, the last
// line of defense around a guarded call.
//
// The router wraps a primary operation under a named service. On
// failure it tries a registered fallback, and failing that returns a
// deterministic degraded response for the service. It never fails:
// callers always get a value, which makes it the outermost layer in a
// wrapper composition. The real error is classified and retained in
// logs and the service health map.
package degrade
