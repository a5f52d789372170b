package cache

import (
	"context"
)

// OperationFunc is the unit of work the middleware protects: one call to
// a remote service for a given input.
type OperationFunc func(ctx context.Context, service string, input any) (any, error)

// Middleware wraps an operation with caching. It is one of the freely
// composable wrappers in this module: callers nest it with retry,
// circuit breaking or degradation in whatever order suits them.
type Middleware struct {
	cache  Cache
	keyer  Keyer
	policy Policy
}

// NewMiddleware creates a caching middleware over the given tier.
func NewMiddleware(cache Cache, keyer Keyer, policy Policy) *Middleware {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &Middleware{
		cache:  cache,
		keyer:  keyer,
		policy: policy,
	}
}

// Execute runs the operation with caching.
// On cache hit, returns the cached result without calling the operation.
// On cache miss, calls the operation and caches the result.
// Errors are NOT cached.
func (m *Middleware) Execute(ctx context.Context, service string, input any, op OperationFunc) (any, error) {
	if m.cache == nil || !m.policy.ShouldCache() {
		return op(ctx, service, input)
	}

	key, err := m.keyer.Key(service, input)
	if err != nil {
		// Key generation failed - execute without caching
		return op(ctx, service, input)
	}

	if cached, ok := m.cache.Get(ctx, key); ok {
		return cached, nil
	}

	result, err := op(ctx, service, input)
	if err != nil {
		return result, err
	}

	if ttl := m.policy.EffectiveTTL(0); ttl > 0 {
		_ = m.cache.Set(ctx, key, result, ttl)
	}

	return result, nil
}

// Wrap returns an operation with caching already applied, for nesting
// inside other wrappers.
func (m *Middleware) Wrap(op OperationFunc) OperationFunc {
	return func(ctx context.Context, service string, input any) (any, error) {
		return m.Execute(ctx, service, input, op)
	}
}
