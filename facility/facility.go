package facility

import (
	"context"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/inferops/cache"
	"github.com/jonwraymond/inferops/degrade"
	"github.com/jonwraymond/inferops/health"
	"github.com/jonwraymond/inferops/observe"
	"github.com/jonwraymond/inferops/resilience"
)

// Config configures a Facility. Zero values select the component
// defaults throughout.
type Config struct {
	// Cache configures the two-tier result cache. Cache.Disk.Dir is
	// required.
	Cache cache.TieredConfig

	// Policy is the caching policy applied to guarded calls.
	Policy cache.Policy

	// Breaker is the per-service circuit breaker template.
	Breaker resilience.CircuitBreakerConfig

	// Retry configures the shared retry controller.
	Retry resilience.RetryConfig

	// Pool configures the shared connection pool.
	Pool resilience.PoolConfig

	// System configures the overall health derivation.
	System health.SystemConfig

	// Responses overrides the degraded-response table.
	Responses map[string]string
}

// Facility owns one instance of every component in this module and
// offers the full wrapper stack for guarded remote calls.
type Facility struct {
	cacher  *cache.Middleware
	tiered  *cache.TieredCache
	pool    *resilience.Pool
	retry   *resilience.Retry
	monitor *observe.Monitor
	tracker *health.Tracker
	router  *degrade.Router
	system  *health.SystemMonitor
	checks  *health.Aggregator
	logger  observe.Logger
	tracer  trace.Tracer
	obs     observe.Observer

	breakerCfg resilience.CircuitBreakerConfig
	mu         sync.Mutex
	breakers   map[string]*resilience.CircuitBreaker
}

// New constructs a Facility. The observer supplies logging and metrics;
// a nil observer disables both.
func New(cfg Config, obs observe.Observer) (*Facility, error) {
	var logger observe.Logger = observe.NopLogger()
	tracer := tracenoop.NewTracerProvider().Tracer("facility")
	if obs != nil {
		logger = obs.Logger()
		tracer = obs.Tracer()
	}
	if cfg.Cache.Logger == nil {
		cfg.Cache.Logger = logger.WithComponent("cache")
	}

	tiered, err := cache.NewTiered(cfg.Cache)
	if err != nil {
		return nil, err
	}

	var monitor *observe.Monitor
	if obs != nil {
		monitor, err = observe.NewMonitor(obs.Meter())
	} else {
		monitor, err = observe.NewMonitor(nil)
	}
	if err != nil {
		return nil, err
	}

	if !cfg.Policy.ShouldCache() {
		cfg.Policy = cache.DefaultPolicy()
	}

	tracker := health.NewTracker()
	router := degrade.NewRouter(degrade.RouterConfig{
		Tracker:   tracker,
		Logger:    logger.WithComponent("degrade"),
		Responses: cfg.Responses,
	})

	system := health.NewSystemMonitor(cfg.System, tracker, monitor)

	checks := health.NewAggregator()
	checks.Register("services", tracker)
	checks.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))
	checks.Register("system", system)

	return &Facility{
		cacher:     cache.NewMiddleware(tiered, cache.NewDefaultKeyer(), cfg.Policy),
		tiered:     tiered,
		pool:       resilience.NewPool(cfg.Pool),
		retry:      resilience.NewRetry(cfg.Retry),
		monitor:    monitor,
		tracker:    tracker,
		router:     router,
		system:     system,
		checks:     checks,
		logger:     logger,
		tracer:     tracer,
		obs:        obs,
		breakerCfg: cfg.Breaker,
		breakers:   make(map[string]*resilience.CircuitBreaker),
	}, nil
}

// Breaker returns the circuit breaker for a service, creating and
// registering it on first use.
func (f *Facility) Breaker(service string) *resilience.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()

	cb, ok := f.breakers[service]
	if !ok {
		cb = resilience.NewCircuitBreaker(f.breakerCfg)
		f.breakers[service] = cb
		f.system.RegisterBreaker(service, cb)
	}
	return cb
}

// Call runs one guarded remote call with the full stack: cache lookup
// first, then timing, circuit breaking, retry and pooling around the
// actual operation. Failures surface to the caller unchanged (or as
// the breaker's rejection); compose with CallDegraded for a
// never-failing variant.
func (f *Facility) Call(ctx context.Context, service string, input any, op cache.OperationFunc) (any, error) {
	guarded := func(ctx context.Context, service string, input any) (any, error) {
		var result any
		err := f.monitor.Observe(ctx, service, func(ctx context.Context) error {
			return observe.WithSpan(ctx, f.tracer, service, func(ctx context.Context) error {
				return f.Breaker(service).Execute(ctx, func(ctx context.Context) error {
					return f.retry.Execute(ctx, func(ctx context.Context) error {
						return f.pool.Execute(ctx, func(ctx context.Context) error {
							value, err := op(ctx, service, input)
							if err != nil {
								return err
							}
							result = value
							return nil
						})
					})
				})
			})
		})
		return result, err
	}

	return f.cacher.Execute(ctx, service, input, guarded)
}

// CallDegraded is Call wrapped in the degradation router: it never
// fails. The result is the primary result, the fallback result, or the
// service's degraded response.
func (f *Facility) CallDegraded(ctx context.Context, service, fallbackKey string, input any, op cache.OperationFunc) any {
	return f.router.Execute(ctx, service, fallbackKey, input, func(ctx context.Context, input any) (any, error) {
		return f.Call(ctx, service, input, op)
	})
}

// RegisterFallback registers a fallback operation for CallDegraded.
func (f *Facility) RegisterFallback(key string, op degrade.Operation) {
	f.router.RegisterFallback(key, op)
}

// SystemHealth returns the current overall health snapshot.
func (f *Facility) SystemHealth() health.SystemHealth {
	return f.system.Snapshot()
}

// CacheStats returns both cache tiers' statistics.
func (f *Facility) CacheStats() cache.TieredStats {
	return f.tiered.Stats()
}

// Metrics returns a snapshot of the performance monitor's table.
func (f *Facility) Metrics() map[string]observe.OperationStats {
	return f.monitor.Metrics()
}

// ClearCache empties both cache tiers.
func (f *Facility) ClearCache(ctx context.Context) error {
	return f.tiered.Clear(ctx)
}

// Handler returns an HTTP handler exposing liveness, readiness,
// detailed health, the system snapshot and (when the observer uses the
// prometheus exporter) the metrics endpoint.
func (f *Facility) Handler() http.Handler {
	mux := http.NewServeMux()
	if f.obs != nil {
		health.RegisterHandlers(mux, f.checks, f.system, f.obs.PrometheusRegistry())
	} else {
		health.RegisterHandlers(mux, f.checks, f.system, nil)
	}
	return mux
}
