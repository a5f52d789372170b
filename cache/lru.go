package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// LRUConfig configures an LRUCache.
type LRUConfig struct {
	// MaxEntries is the maximum number of live entries.
	// Default: 1000
	MaxEntries int

	// DefaultTTL is applied when Set is called with ttl<=0.
	// Default: 5 minutes
	DefaultTTL time.Duration
}

// LRUCache is a bounded in-memory cache with per-entry TTL and
// least-recently-used eviction. The recency list keeps the most
// recently used entry at the front.
type LRUCache struct {
	mu         sync.Mutex
	maxEntries int
	defaultTTL time.Duration
	items      map[string]*list.Element
	order      *list.List

	hits       int64
	misses     int64
	evictions  int64
	totalBytes int64

	// now is replaceable in tests to drive TTL expiry.
	now func() time.Time
}

type lruItem struct {
	key   string
	entry Entry
}

// NewLRU creates a new LRU cache.
func NewLRU(config LRUConfig) *LRUCache {
	// Apply defaults
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1000
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 5 * time.Minute
	}

	return &LRUCache{
		maxEntries: config.MaxEntries,
		defaultTTL: config.DefaultTTL,
		items:      make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// Get retrieves a value by key. A live hit marks the entry most recently
// used and increments its hit count. Expired entries are deleted as a
// side effect and reported as a miss.
func (c *LRUCache) Get(_ context.Context, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	item := element.Value.(*lruItem)
	if item.entry.Expired(c.now()) {
		c.removeLocked(element)
		c.misses++
		return nil, false
	}

	c.order.MoveToFront(element)
	item.entry.HitCount++
	c.hits++
	return item.entry.Value, true
}

// GetEntry returns a copy of the live entry for a key, for diagnostics
// and tier promotion. Does not update counters or recency.
func (c *LRUCache) GetEntry(_ context.Context, key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return Entry{}, false
	}
	item := element.Value.(*lruItem)
	if item.entry.Expired(c.now()) {
		c.removeLocked(element)
		return Entry{}, false
	}
	return item.entry, true
}

// Set stores a value as most recently used, then enforces expiry and the
// capacity bound: expired entries are purged first, and the least
// recently used entries are evicted while the cache is over capacity.
func (c *LRUCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	size := EstimateSize(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{
		Value:     value,
		CreatedAt: c.now(),
		TTL:       ttl,
		SizeBytes: size,
	}

	if element, ok := c.items[key]; ok {
		item := element.Value.(*lruItem)
		c.totalBytes += size - item.entry.SizeBytes
		item.entry = entry
		c.order.MoveToFront(element)
	} else {
		element := c.order.PushFront(&lruItem{key: key, entry: entry})
		c.items[key] = element
		c.totalBytes += size
	}

	c.purgeExpiredLocked()
	for len(c.items) > c.maxEntries {
		c.evictOldestLocked()
	}

	return nil
}

// Delete removes an entry by key. Idempotent.
func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		c.removeLocked(element)
	}
	return nil
}

// Clear removes all entries and resets all counters.
func (c *LRUCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
	c.totalBytes = 0
	return nil
}

// Len returns the current number of entries, including any not yet
// purged expired ones.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns all keys in recency order, most recently used first.
func (c *LRUCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for element := c.order.Front(); element != nil; element = element.Next() {
		keys = append(keys, element.Value.(*lruItem).key)
	}
	return keys
}

// Stats returns a snapshot of the cache counters.
func (c *LRUCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		Entries:    len(c.items),
		MaxEntries: c.maxEntries,
		TotalBytes: c.totalBytes,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	if len(c.items) > 0 {
		s.AvgEntryBytes = float64(c.totalBytes) / float64(len(c.items))
	}
	return s
}

// purgeExpiredLocked deletes all expired entries. Must be called with the
// mutex held. Expiry purges do not count as evictions.
func (c *LRUCache) purgeExpiredLocked() {
	now := c.now()
	for element := c.order.Front(); element != nil; {
		next := element.Next()
		if element.Value.(*lruItem).entry.Expired(now) {
			c.removeLocked(element)
		}
		element = next
	}
}

// evictOldestLocked removes the least recently used entry and counts an
// eviction. Must be called with the mutex held.
func (c *LRUCache) evictOldestLocked() {
	element := c.order.Back()
	if element == nil {
		return
	}
	c.removeLocked(element)
	c.evictions++
}

// removeLocked removes an element from both the list and the map.
// Must be called with the mutex held.
func (c *LRUCache) removeLocked(element *list.Element) {
	item := element.Value.(*lruItem)
	delete(c.items, item.key)
	c.order.Remove(element)
	c.totalBytes -= item.entry.SizeBytes
}

// Stats contains counters for a single cache tier.
type Stats struct {
	Hits          int64
	Misses        int64
	HitRate       float64
	Evictions     int64
	Entries       int
	MaxEntries    int
	TotalBytes    int64
	AvgEntryBytes float64
}

// Ensure LRUCache implements Cache
var _ Cache = (*LRUCache)(nil)
