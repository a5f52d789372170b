// Package cache provides a two-tier result cache for expensive remote calls.
//
// The package offers three building blocks:
//
//   - LRUCache: a bounded in-memory cache with per-entry TTL and
//     least-recently-used eviction.
//
//   - DiskCache: a directory-backed cache keyed by a content hash of the
//     logical key, with the same TTL semantics. Disk failures are treated
//     as misses, never as errors.
//
//   - TieredCache: composes an LRUCache and a DiskCache. Misses in the
//     memory tier probe the disk tier and promote hits back into memory.
//
// All caches implement the Cache interface and are safe for concurrent
// use. Absence is a value, not an error: Get never fails, it reports a
// miss.
//
// # Usage
//
//	tiered, err := cache.NewTiered(cache.TieredConfig{
//	    Memory: cache.LRUConfig{MaxEntries: 1000, DefaultTTL: 5 * time.Minute},
//	    Disk:   cache.DiskConfig{Dir: "/var/cache/inferops"},
//	})
//	if err != nil {
//	    return err
//	}
//
//	mw := cache.NewMiddleware(tiered, cache.NewDefaultKeyer(), cache.DefaultPolicy())
//	result, err := mw.Execute(ctx, "summarize", input, callProvider)
package cache
