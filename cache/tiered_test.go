package cache

import (
	"context"
	"testing"
	"time"
)

func newTestTiered(t *testing.T) *TieredCache {
	t.Helper()
	c, err := NewTiered(TieredConfig{
		Memory: LRUConfig{MaxEntries: 10},
		Disk:   DiskConfig{Dir: t.TempDir()},
	})
	if err != nil {
		t.Fatalf("NewTiered() error = %v", err)
	}
	return c
}

func TestTiered_WriteThrough(t *testing.T) {
	c := newTestTiered(t)
	ctx := context.Background()

	if err := c.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, ok := c.Memory().Get(ctx, "key"); !ok {
		t.Error("memory tier missing key after Set")
	}
	if _, ok := c.Disk().Get(ctx, "key"); !ok {
		t.Error("disk tier missing key after Set")
	}
}

func TestTiered_PromotesDiskHit(t *testing.T) {
	c := newTestTiered(t)
	ctx := context.Background()

	// Populate the disk tier only.
	if err := c.Disk().Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("disk Set() error = %v", err)
	}
	if _, ok := c.Memory().Get(ctx, "key"); ok {
		t.Fatal("memory tier unexpectedly populated")
	}

	value, ok := c.Get(ctx, "key")
	if !ok || value != "value" {
		t.Fatalf("Get(key) = %v, %v; want value, true", value, ok)
	}

	// The disk hit is now promoted; the next Get is a memory hit.
	if _, ok := c.Memory().Get(ctx, "key"); !ok {
		t.Error("disk hit not promoted into memory")
	}
}

func TestTiered_PromotionKeepsRemainingTTL(t *testing.T) {
	c := newTestTiered(t)
	ctx := context.Background()

	if err := c.Disk().Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("disk Set() error = %v", err)
	}
	if _, ok := c.Get(ctx, "key"); !ok {
		t.Fatal("Get(key) = miss, want disk hit")
	}

	entry, ok := c.Memory().GetEntry(ctx, "key")
	if !ok {
		t.Fatal("promoted entry missing from memory")
	}
	if entry.TTL > time.Minute || entry.TTL <= 0 {
		t.Errorf("promoted TTL = %v, want remaining duration in (0, 1m]", entry.TTL)
	}
}

func TestTiered_MissBothTiers(t *testing.T) {
	c := newTestTiered(t)

	if _, ok := c.Get(context.Background(), "missing"); ok {
		t.Error("Get(missing) = hit, want miss")
	}
}

func TestTiered_Delete(t *testing.T) {
	c := newTestTiered(t)
	ctx := context.Background()

	_ = c.Set(ctx, "key", 1, time.Minute)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, ok := c.Get(ctx, "key"); ok {
		t.Error("Get after Delete = hit, want miss")
	}
}

func TestTiered_BlendedHitRate(t *testing.T) {
	c := newTestTiered(t)
	ctx := context.Background()

	// Memory: 1 hit, 1 miss -> 0.5. Disk: 1 miss -> 0.
	_ = c.Memory().Set(ctx, "a", 1, time.Minute)
	c.Memory().Get(ctx, "a")
	c.Get(ctx, "absent") // memory miss + disk miss

	stats := c.Stats()
	if want := 0.5*0.7 + 0*0.3; stats.BlendedHitRate != want {
		t.Errorf("BlendedHitRate = %v, want %v", stats.BlendedHitRate, want)
	}
}

func TestTiered_CustomWeights(t *testing.T) {
	c, err := NewTiered(TieredConfig{
		Memory:       LRUConfig{MaxEntries: 10},
		Disk:         DiskConfig{Dir: t.TempDir()},
		MemoryWeight: 0.5,
		DiskWeight:   0.5,
	})
	if err != nil {
		t.Fatalf("NewTiered() error = %v", err)
	}

	if c.memoryWeight != 0.5 || c.diskWeight != 0.5 {
		t.Errorf("weights = %v, %v; want 0.5, 0.5", c.memoryWeight, c.diskWeight)
	}
}

func TestTiered_Clear(t *testing.T) {
	c := newTestTiered(t)
	ctx := context.Background()

	_ = c.Set(ctx, "a", 1, time.Minute)
	_ = c.Set(ctx, "b", 2, time.Minute)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("Get(a) after Clear = hit, want miss")
	}
	if c.Memory().Len() != 0 {
		t.Errorf("memory len = %d, want 0", c.Memory().Len())
	}
}
