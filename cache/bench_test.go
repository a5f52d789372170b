package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func BenchmarkLRU_Get(b *testing.B) {
	c := NewLRU(LRUConfig{MaxEntries: 1000})
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_ = c.Set(ctx, fmt.Sprintf("key-%d", i), i, time.Hour)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, fmt.Sprintf("key-%d", i%1000))
	}
}

func BenchmarkLRU_Set(b *testing.B) {
	c := NewLRU(LRUConfig{MaxEntries: 1000})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(ctx, fmt.Sprintf("key-%d", i), i, time.Hour)
	}
}

func BenchmarkDefaultKeyer_Key(b *testing.B) {
	k := NewDefaultKeyer()
	input := map[string]any{
		"prompt":      "benchmark prompt text",
		"model":       "large",
		"temperature": 0.7,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = k.Key("chat", input)
	}
}
