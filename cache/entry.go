package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is a single cached value with its expiry and usage metadata.
type Entry struct {
	// Value is the cached payload.
	Value any

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time

	// TTL is how long the entry stays live after CreatedAt.
	TTL time.Duration

	// HitCount is the number of times the entry was returned.
	HitCount int64

	// SizeBytes is the approximate serialized size of Value.
	SizeBytes int64
}

// Expired reports whether the entry is past its TTL at the given time.
func (e *Entry) Expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) >= e.TTL
}

// Remaining returns the live time left at the given instant. Expired
// entries return 0.
func (e *Entry) Remaining(now time.Time) time.Duration {
	left := e.TTL - now.Sub(e.CreatedAt)
	if left < 0 {
		return 0
	}
	return left
}

// EstimateSize returns an approximate serialized size for a value.
//
// Size accounting is a heuristic, not an exact byte count: values that
// serialize to JSON use the encoded length, anything else falls back to
// the length of its string formatting.
func EstimateSize(v any) int64 {
	if v == nil {
		return 0
	}
	if data, err := json.Marshal(v); err == nil {
		return int64(len(data))
	}
	return int64(len(fmt.Sprintf("%v", v)))
}
