package classify

import (
	"strings"
	"time"
)

// Category is the error taxonomy for guarded remote calls.
type Category int

const (
	// CategoryUnknown is the fallback when no rule matches.
	CategoryUnknown Category = iota
	// CategoryConnection covers network and transport failures.
	CategoryConnection
	// CategoryAuthentication covers credential and permission failures.
	CategoryAuthentication
	// CategoryRateLimit covers provider quota rejections.
	CategoryRateLimit
	// CategoryModelUnavailable covers missing or overloaded models.
	CategoryModelUnavailable
	// CategoryResourceExhausted covers memory and capacity exhaustion.
	CategoryResourceExhausted
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryConnection:
		return "connection"
	case CategoryAuthentication:
		return "authentication"
	case CategoryRateLimit:
		return "rate_limit"
	case CategoryModelUnavailable:
		return "model_unavailable"
	case CategoryResourceExhausted:
		return "resource_exhausted"
	default:
		return "unknown"
	}
}

// Severity grades how serious a classified error is.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "medium"
	}
}

// Context is the classification result attached to a failed call.
type Context struct {
	// Category is the matched error category.
	Category Category

	// Severity is the category's fixed severity.
	Severity Severity

	// RetryCount is how many times the operation has been retried so
	// far; the classifier itself leaves it at zero.
	RetryCount int

	// LastErrorTime is when the error was classified.
	LastErrorTime time.Time

	// Suggestions are human-actionable recovery steps, most useful first.
	Suggestions []string
}

// rule is one entry in the ordered matching table.
type rule struct {
	category    Category
	severity    Severity
	keywords    []string
	suggestions []string
}

// rules is matched in order; the first category with a keyword hit wins.
var rules = []rule{
	{
		category: CategoryConnection,
		severity: SeverityHigh,
		keywords: []string{"connection", "network", "unreachable", "refused", "timeout", "timed out", "broken pipe", "reset by peer"},
		suggestions: []string{
			"check network connectivity to the provider endpoint",
			"verify the endpoint URL and port",
			"retry after a short delay; transient network faults usually clear",
		},
	},
	{
		category: CategoryAuthentication,
		severity: SeverityCritical,
		keywords: []string{"auth", "unauthorized", "forbidden", "api key", "credential", "permission denied", "401", "403"},
		suggestions: []string{
			"verify the API key or credentials are set and unexpired",
			"check that the key has access to the requested model",
			"rotate the credential if it may have been revoked",
		},
	},
	{
		category: CategoryRateLimit,
		severity: SeverityMedium,
		keywords: []string{"rate limit", "rate_limit", "too many requests", "quota", "429", "throttl"},
		suggestions: []string{
			"slow the request rate or enable the rate limiter",
			"batch requests where possible",
			"request a quota increase from the provider",
		},
	},
	{
		category: CategoryModelUnavailable,
		severity: SeverityHigh,
		keywords: []string{"model", "not found", "unavailable", "overloaded", "404", "503"},
		suggestions: []string{
			"verify the model name is correct and still offered",
			"fall back to an alternative model",
			"retry later; the provider may be overloaded",
		},
	},
	{
		category: CategoryResourceExhausted,
		severity: SeverityCritical,
		keywords: []string{"out of memory", "memory", "resource", "exhausted", "capacity", "disk full", "no space"},
		suggestions: []string{
			"reduce request size or concurrency",
			"free memory or disk on the host",
			"scale the workload across more processes",
		},
	},
}

// genericSuggestions back the unknown category.
var genericSuggestions = []string{
	"inspect the full error message and provider logs",
	"retry the operation once; transient faults are common",
	"report the error signature if it recurs",
}

// Classify maps an error message to its category context. Matching is
// case-insensitive.
func Classify(message string) Context {
	lower := strings.ToLower(message)

	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(lower, keyword) {
				return Context{
					Category:      r.category,
					Severity:      r.severity,
					LastErrorTime: time.Now(),
					Suggestions:   append([]string(nil), r.suggestions...),
				}
			}
		}
	}

	return Context{
		Category:      CategoryUnknown,
		Severity:      SeverityMedium,
		LastErrorTime: time.Now(),
		Suggestions:   append([]string(nil), genericSuggestions...),
	}
}

// ClassifyError classifies a non-nil error's message. A nil error
// yields the unknown category with no suggestions.
func ClassifyError(err error) Context {
	if err == nil {
		return Context{Category: CategoryUnknown, Severity: SeverityMedium, LastErrorTime: time.Now()}
	}
	return Classify(err.Error())
}
