package classify

import (
	"errors"
	"testing"
)

func TestClassify_Categories(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		category Category
		severity Severity
	}{
		{"connection refused", "dial tcp 10.0.0.1:8080: connection refused", CategoryConnection, SeverityHigh},
		{"network unreachable", "network is unreachable", CategoryConnection, SeverityHigh},
		{"timeout", "request timed out after 30s", CategoryConnection, SeverityHigh},
		{"broken pipe", "write: broken pipe", CategoryConnection, SeverityHigh},
		{"unauthorized", "server returned 401 unauthorized", CategoryAuthentication, SeverityCritical},
		{"bad api key", "invalid API key provided", CategoryAuthentication, SeverityCritical},
		{"forbidden", "403 Forbidden", CategoryAuthentication, SeverityCritical},
		{"rate limited", "429 too many requests", CategoryRateLimit, SeverityMedium},
		{"quota", "monthly quota exceeded", CategoryRateLimit, SeverityMedium},
		{"throttled", "request throttled by provider", CategoryRateLimit, SeverityMedium},
		{"model missing", "model llama-7b not found", CategoryModelUnavailable, SeverityHigh},
		{"service overloaded", "503 service overloaded", CategoryModelUnavailable, SeverityHigh},
		{"oom", "worker killed: out of memory", CategoryResourceExhausted, SeverityCritical},
		{"disk full", "write failed: disk full", CategoryResourceExhausted, SeverityCritical},
		{"unknown", "something inexplicable happened", CategoryUnknown, SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.message)
			if got.Category != tt.category {
				t.Errorf("Classify(%q).Category = %v, want %v", tt.message, got.Category, tt.category)
			}
			if got.Severity != tt.severity {
				t.Errorf("Classify(%q).Severity = %v, want %v", tt.message, got.Severity, tt.severity)
			}
			if len(got.Suggestions) == 0 {
				t.Errorf("Classify(%q) returned no suggestions", tt.message)
			}
			if got.LastErrorTime.IsZero() {
				t.Errorf("Classify(%q).LastErrorTime is zero", tt.message)
			}
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	upper := Classify("CONNECTION REFUSED")
	lower := Classify("connection refused")

	if upper.Category != lower.Category {
		t.Errorf("case changed the category: %v vs %v", upper.Category, lower.Category)
	}
	if upper.Category != CategoryConnection {
		t.Errorf("Category = %v, want connection", upper.Category)
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// "connection" and "quota" both appear; the earlier rule in the table
	// takes precedence.
	got := Classify("connection closed while checking quota")
	if got.Category != CategoryConnection {
		t.Errorf("Category = %v, want connection (table order decides ties)", got.Category)
	}
}

func TestClassify_SuggestionsAreCopies(t *testing.T) {
	first := Classify("connection refused")
	first.Suggestions[0] = "mutated"

	second := Classify("connection refused")
	if second.Suggestions[0] == "mutated" {
		t.Error("mutating a result's suggestions leaked into the rule table")
	}
}

func TestClassifyError(t *testing.T) {
	got := ClassifyError(errors.New("401 unauthorized"))
	if got.Category != CategoryAuthentication {
		t.Errorf("Category = %v, want authentication", got.Category)
	}
}

func TestClassifyError_Nil(t *testing.T) {
	got := ClassifyError(nil)
	if got.Category != CategoryUnknown {
		t.Errorf("Category = %v, want unknown", got.Category)
	}
	if len(got.Suggestions) != 0 {
		t.Errorf("Suggestions = %v, want none for nil error", got.Suggestions)
	}
}

func TestCategory_String(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryConnection, "connection"},
		{CategoryAuthentication, "authentication"},
		{CategoryRateLimit, "rate_limit"},
		{CategoryModelUnavailable, "model_unavailable"},
		{CategoryResourceExhausted, "resource_exhausted"},
		{CategoryUnknown, "unknown"},
		{Category(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityLow, "low"},
		{SeverityMedium, "medium"},
		{SeverityHigh, "high"},
		{SeverityCritical, "critical"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.severity, got, tt.want)
		}
	}
}
