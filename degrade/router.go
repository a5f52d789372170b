package degrade

import (
	"context"
	"sync"

	"github.com/jonwraymond/inferops/classify"
	"github.com/jonwraymond/inferops/health"
	"github.com/jonwraymond/inferops/observe"
)

// Operation is the unit of work the router protects: one call to a
// named service for a given input. Fallbacks share this signature so
// they can be invoked with the same arguments as the primary.
type Operation func(ctx context.Context, input any) (any, error)

// GenericResponse is returned for service names absent from the
// degraded-response table.
const GenericResponse = "The service is temporarily degraded. Please try again shortly."

// DefaultResponses returns the built-in degraded-response table.
func DefaultResponses() map[string]string {
	return map[string]string{
		"chat":      "I'm running in degraded mode and can't reach my language model right now. Please try again in a moment.",
		"summarize": "Summarization is temporarily unavailable. The original text is unchanged.",
		"embedding": "Embedding generation is temporarily unavailable; results may be less relevant.",
	}
}

// RouterConfig configures the degradation router.
type RouterConfig struct {
	// Tracker receives healthy/degraded marks after every call.
	Tracker *health.Tracker

	// Logger receives a warning for every degraded call.
	Logger observe.Logger

	// Responses overrides the degraded-response table. Missing services
	// fall back to GenericResponse.
	Responses map[string]string
}

// Router wraps primary operations with fallback and degraded-response
// handling. It never returns an error.
type Router struct {
	tracker   *health.Tracker
	logger    observe.Logger
	responses map[string]string

	mu        sync.RWMutex
	fallbacks map[string]Operation
}

// NewRouter creates a degradation router.
func NewRouter(config RouterConfig) *Router {
	if config.Tracker == nil {
		config.Tracker = health.NewTracker()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Responses == nil {
		config.Responses = DefaultResponses()
	}

	return &Router{
		tracker:   config.Tracker,
		logger:    config.Logger,
		responses: config.Responses,
		fallbacks: make(map[string]Operation),
	}
}

// RegisterFallback registers a fallback operation under a key. A later
// registration for the same key replaces the earlier one.
func (r *Router) RegisterFallback(key string, op Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks[key] = op
}

// Tracker returns the service health tracker the router marks.
func (r *Router) Tracker() *health.Tracker {
	return r.tracker
}

// Execute runs the primary operation for the named service. On success
// the service is marked healthy and the result passes through
// unchanged. On failure the service is marked degraded, the error is
// classified and logged, and the registered fallback (if any) runs with
// the same arguments; if that also fails, the service's degraded
// response is returned.
func (r *Router) Execute(ctx context.Context, service, fallbackKey string, input any, op Operation) any {
	result, err := op(ctx, input)
	if err == nil {
		r.tracker.MarkHealthy(service)
		return result
	}

	r.tracker.MarkDegraded(service, err.Error())

	ec := classify.ClassifyError(err)
	r.logger.Warn(ctx, "service call failed, degrading",
		observe.Field{Key: "service", Value: service},
		observe.Field{Key: "error", Value: err.Error()},
		observe.Field{Key: "category", Value: ec.Category.String()},
		observe.Field{Key: "severity", Value: ec.Severity.String()},
		observe.Field{Key: "suggestions", Value: ec.Suggestions},
	)

	if fallback := r.fallback(fallbackKey); fallback != nil {
		result, fbErr := fallback(ctx, input)
		if fbErr == nil {
			return result
		}
		r.logger.Warn(ctx, "fallback failed",
			observe.Field{Key: "service", Value: service},
			observe.Field{Key: "fallback", Value: fallbackKey},
			observe.Field{Key: "error", Value: fbErr.Error()},
		)
	}

	return r.degradedResponse(service)
}

// Wrap returns an operation with degradation already applied. The
// returned operation never errors.
func (r *Router) Wrap(service, fallbackKey string, op Operation) func(ctx context.Context, input any) any {
	return func(ctx context.Context, input any) any {
		return r.Execute(ctx, service, fallbackKey, input, op)
	}
}

func (r *Router) fallback(key string) Operation {
	if key == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallbacks[key]
}

func (r *Router) degradedResponse(service string) string {
	if response, ok := r.responses[service]; ok {
		return response
	}
	return GenericResponse
}
