package cache

import (
	"strings"
	"testing"
)

func TestDefaultKeyer_Format(t *testing.T) {
	k := NewDefaultKeyer()

	key, err := k.Key("chat", map[string]any{"prompt": "hello"})
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}

	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		t.Fatalf("key %q has %d segments, want 3", key, len(parts))
	}
	if parts[0] != "infer" || parts[1] != "chat" {
		t.Errorf("key prefix = %s:%s, want infer:chat", parts[0], parts[1])
	}
	if len(parts[2]) != 16 {
		t.Errorf("hash length = %d, want 16", len(parts[2]))
	}
}

func TestDefaultKeyer_Deterministic(t *testing.T) {
	k := NewDefaultKeyer()

	// Maps iterate in random order; the canonical form must not.
	input := map[string]any{
		"model":       "large",
		"prompt":      "hello",
		"temperature": 0.7,
		"nested":      map[string]any{"b": 2, "a": 1, "c": []any{"x", "y"}},
	}

	first, err := k.Key("chat", input)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		key, err := k.Key("chat", input)
		if err != nil {
			t.Fatalf("Key() error = %v", err)
		}
		if key != first {
			t.Fatalf("Key() = %q on iteration %d, want %q", key, i, first)
		}
	}
}

func TestDefaultKeyer_DistinctInputs(t *testing.T) {
	k := NewDefaultKeyer()

	a, _ := k.Key("chat", map[string]any{"prompt": "one"})
	b, _ := k.Key("chat", map[string]any{"prompt": "two"})
	c, _ := k.Key("summarize", map[string]any{"prompt": "one"})

	if a == b {
		t.Error("different inputs produced the same key")
	}
	if a == c {
		t.Error("different services produced the same key")
	}
}

func TestDefaultKeyer_NilInput(t *testing.T) {
	k := NewDefaultKeyer()

	key, err := k.Key("chat", nil)
	if err != nil {
		t.Fatalf("Key(nil) error = %v", err)
	}
	if key == "" {
		t.Error("Key(nil) = empty string")
	}
}

func TestDefaultKeyer_UnserializableInput(t *testing.T) {
	k := NewDefaultKeyer()

	if _, err := k.Key("chat", make(chan int)); err == nil {
		t.Error("Key(chan) error = nil, want error")
	}
}
