package cache

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/inferops/observe"
)

// TieredConfig configures a TieredCache.
type TieredConfig struct {
	// Memory configures the fast in-memory tier.
	Memory LRUConfig

	// Disk configures the slow persistent tier.
	Disk DiskConfig

	// MemoryWeight and DiskWeight blend the two tiers' hit rates into a
	// single figure. The memory tier is weighted higher to reflect the
	// cost asymmetry between tiers.
	// Defaults: 0.7 and 0.3
	MemoryWeight float64
	DiskWeight   float64

	// Logger receives warnings for swallowed failures.
	Logger observe.Logger
}

// TieredCache composes a fast in-memory tier with a slower persistent
// tier. Writes go through to both tiers; a value found only in the slow
// tier is promoted into memory before being returned.
type TieredCache struct {
	memory *LRUCache
	disk   *DiskCache

	memoryWeight float64
	diskWeight   float64
	logger       observe.Logger

	// group deduplicates concurrent disk probes for the same key.
	group singleflight.Group
}

// TieredStats reports both tiers plus a blended hit rate.
type TieredStats struct {
	Memory         Stats
	Disk           Stats
	BlendedHitRate float64
}

// NewTiered creates a two-tier cache.
func NewTiered(config TieredConfig) (*TieredCache, error) {
	// Apply defaults
	if config.MemoryWeight <= 0 {
		config.MemoryWeight = 0.7
	}
	if config.DiskWeight <= 0 {
		config.DiskWeight = 0.3
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Disk.Logger == nil {
		config.Disk.Logger = config.Logger
	}

	disk, err := NewDisk(config.Disk)
	if err != nil {
		return nil, err
	}

	return &TieredCache{
		memory:       NewLRU(config.Memory),
		disk:         disk,
		memoryWeight: config.MemoryWeight,
		diskWeight:   config.DiskWeight,
		logger:       config.Logger,
	}, nil
}

// Get checks the memory tier first, then the disk tier. A disk hit is
// promoted into memory with its remaining TTL. Concurrent misses on the
// same key share one disk probe.
func (c *TieredCache) Get(ctx context.Context, key string) (any, bool) {
	if value, ok := c.memory.Get(ctx, key); ok {
		return value, true
	}

	type diskHit struct {
		value     any
		remaining time.Duration
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		value, remaining, ok := c.disk.Lookup(ctx, key)
		if !ok {
			return nil, errDiskMiss
		}
		return diskHit{value: value, remaining: remaining}, nil
	})
	if err != nil {
		return nil, false
	}

	hit := result.(diskHit)
	if err := c.memory.Set(ctx, key, hit.value, hit.remaining); err != nil {
		c.logger.Warn(ctx, "tiered cache promote failed", observe.Field{Key: "error", Value: err.Error()})
	}
	return hit.value, true
}

// Set writes through: memory tier, then disk index and file.
func (c *TieredCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.memory.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(ctx, key, value, ttl)
}

// Delete removes the key from both tiers.
func (c *TieredCache) Delete(ctx context.Context, key string) error {
	if err := c.memory.Delete(ctx, key); err != nil {
		return err
	}
	return c.disk.Delete(ctx, key)
}

// Clear empties both tiers and deletes all cache files.
func (c *TieredCache) Clear(ctx context.Context) error {
	if err := c.memory.Clear(ctx); err != nil {
		return err
	}
	return c.disk.Clear(ctx)
}

// Memory returns the fast tier for direct inspection.
func (c *TieredCache) Memory() *LRUCache {
	return c.memory
}

// Disk returns the slow tier for direct inspection.
func (c *TieredCache) Disk() *DiskCache {
	return c.disk
}

// Stats returns both tiers' counters and the blended hit rate.
func (c *TieredCache) Stats() TieredStats {
	memory := c.memory.Stats()
	disk := c.disk.Stats()

	blended := memory.HitRate*c.memoryWeight + disk.HitRate*c.diskWeight
	return TieredStats{
		Memory:         memory,
		Disk:           disk,
		BlendedHitRate: blended,
	}
}

// errDiskMiss is internal to the singleflight probe; it never escapes Get.
var errDiskMiss = errors.New("cache: disk miss")

// Ensure TieredCache implements Cache
var _ Cache = (*TieredCache)(nil)
