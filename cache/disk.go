package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jonwraymond/inferops/observe"
)

// fileSuffix is appended to every on-disk cache file.
const fileSuffix = ".cache"

// DiskConfig configures a DiskCache.
type DiskConfig struct {
	// Dir is the directory holding cache files. Created if absent.
	Dir string

	// MaxEntries bounds the in-memory index of the disk tier.
	// Default: 10000
	MaxEntries int

	// DefaultTTL is applied when Set is called with ttl<=0.
	// Default: 1 hour
	DefaultTTL time.Duration

	// Logger receives warnings for swallowed disk failures.
	Logger observe.Logger
}

// DiskCache is a directory-backed cache tier. Each key maps to one file
// named by the hex SHA-256 digest of the key, so filenames are safe for
// any filesystem and leak nothing about the key. An in-memory index
// fronts the files; a value found only on disk is loaded back into the
// index.
//
// Durability is best-effort: every disk failure is logged and treated as
// a miss, it never fails the caller's request.
type DiskCache struct {
	dir        string
	defaultTTL time.Duration
	index      *LRUCache
	logger     observe.Logger

	now func() time.Time
}

// diskRecord is the JSON wire format of one cache file.
type diskRecord struct {
	Value     any     `json:"value"`
	CreatedAt float64 `json:"created_at"`
	TTL       float64 `json:"ttl"`
}

// NewDisk creates a disk cache rooted at config.Dir.
func NewDisk(config DiskConfig) (*DiskCache, error) {
	// Apply defaults
	if config.MaxEntries <= 0 {
		config.MaxEntries = 10000
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = time.Hour
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	if err := os.MkdirAll(config.Dir, 0o750); err != nil {
		return nil, err
	}

	return &DiskCache{
		dir:        config.Dir,
		defaultTTL: config.DefaultTTL,
		index:      NewLRU(LRUConfig{MaxEntries: config.MaxEntries, DefaultTTL: config.DefaultTTL}),
		logger:     config.Logger,
		now:        time.Now,
	}, nil
}

// Get retrieves a value by key, consulting the index first and falling
// back to the on-disk file.
func (c *DiskCache) Get(ctx context.Context, key string) (any, bool) {
	value, _, ok := c.Lookup(ctx, key)
	return value, ok
}

// Lookup is Get plus the remaining live duration of the entry, for
// promotion into a faster tier.
func (c *DiskCache) Lookup(ctx context.Context, key string) (any, time.Duration, bool) {
	if entry, ok := c.index.GetEntry(ctx, key); ok {
		// Count the hit on the index.
		c.index.Get(ctx, key)
		return entry.Value, entry.Remaining(c.now()), true
	}

	value, remaining, ok := c.loadFile(ctx, key)
	if !ok {
		return nil, 0, false
	}

	// Re-populate the index so the next lookup skips the file read.
	if err := c.index.Set(ctx, key, value, remaining); err != nil {
		c.logger.Warn(ctx, "disk cache index populate failed", observe.Field{Key: "error", Value: err.Error()})
	}
	return value, remaining, true
}

// Set stores a value in the index and writes it through to disk. The
// file write happens outside the index lock; a write failure is logged
// and swallowed.
func (c *DiskCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if err := c.index.Set(ctx, key, value, ttl); err != nil {
		return err
	}

	record := diskRecord{
		Value:     value,
		CreatedAt: float64(c.now().UnixNano()) / float64(time.Second),
		TTL:       ttl.Seconds(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		c.logger.Warn(ctx, "disk cache serialize failed", observe.Field{Key: "error", Value: err.Error()})
		return nil
	}
	if err := os.WriteFile(c.path(key), data, 0o600); err != nil {
		c.logger.Warn(ctx, "disk cache write failed",
			observe.Field{Key: "error", Value: err.Error()},
			observe.Field{Key: "dir", Value: c.dir},
		)
	}
	return nil
}

// Delete removes the key from the index and its file from disk.
func (c *DiskCache) Delete(ctx context.Context, key string) error {
	if err := c.index.Delete(ctx, key); err != nil {
		return err
	}
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		c.logger.Warn(ctx, "disk cache remove failed", observe.Field{Key: "error", Value: err.Error()})
	}
	return nil
}

// Clear empties the index and deletes all cache files in the directory.
// File deletion failures are logged, not raised.
func (c *DiskCache) Clear(ctx context.Context) error {
	if err := c.index.Clear(ctx); err != nil {
		return err
	}

	matches, err := filepath.Glob(filepath.Join(c.dir, "*"+fileSuffix))
	if err != nil {
		c.logger.Warn(ctx, "disk cache clear glob failed", observe.Field{Key: "error", Value: err.Error()})
		return nil
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			c.logger.Warn(ctx, "disk cache clear remove failed",
				observe.Field{Key: "file", Value: match},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
	}
	return nil
}

// Stats returns the index counters.
func (c *DiskCache) Stats() Stats {
	return c.index.Stats()
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	return c.dir
}

// path returns the on-disk file for a key.
func (c *DiskCache) path(key string) string {
	digest := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(digest[:])+fileSuffix)
}

// loadFile reads and validates the file for a key. A missing, corrupt or
// expired file is a miss; expired and corrupt files are removed.
func (c *DiskCache) loadFile(ctx context.Context, key string) (any, time.Duration, bool) {
	path := c.path(key)

	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from a hash, not caller input.
	if err != nil {
		return nil, 0, false
	}

	var record diskRecord
	if err := json.Unmarshal(data, &record); err != nil {
		c.logger.Debug(ctx, "disk cache file corrupt, removing", observe.Field{Key: "file", Value: path})
		_ = os.Remove(path)
		return nil, 0, false
	}

	createdAt := time.Unix(0, int64(record.CreatedAt*float64(time.Second)))
	ttl := time.Duration(record.TTL * float64(time.Second))
	remaining := ttl - c.now().Sub(createdAt)
	if remaining <= 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.logger.Warn(ctx, "disk cache expired remove failed", observe.Field{Key: "error", Value: err.Error()})
		}
		return nil, 0, false
	}

	return record.Value, remaining, true
}

// Ensure DiskCache implements Cache
var _ Cache = (*DiskCache)(nil)
