// Package cache stores scrape results for a fixed time-to-live.
//
// Entries carry their own absolute expiry in epoch milliseconds and are
// evicted lazily: a read that finds an expired entry deletes it and reports
// a miss. There is no background sweeper.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JakeFAU/photo-album-scraper/internal/metrics"
	"github.com/JakeFAU/photo-album-scraper/internal/scraper"
	"go.uber.org/zap"
)

// DefaultTTL is used when a Cache is built with a non-positive TTL.
const DefaultTTL = 72 * time.Hour

// ErrNotFound is returned by a Store when no entry exists for a key.
var ErrNotFound = errors.New("cache entry not found")

// Entry is the persisted form of a cached result.
type Entry struct {
	Expiry  int64                 `json:"expiry"`
	Payload []scraper.PhotoRecord `json:"payload"`
}

// Store is the backing storage of a Cache. Load returns ErrNotFound for a
// missing entry; any other error is treated by the Cache as a miss.
type Store interface {
	Load(ctx context.Context, key string) (Entry, error)
	Save(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
}

// Cache is a TTL cache of photo records keyed by album URL.
type Cache struct {
	store  Store
	clock  scraper.Clock
	hasher scraper.Hasher
	ttl    time.Duration
	logger *zap.Logger
}

// New builds a Cache. A non-positive ttl selects DefaultTTL.
func New(store Store, clock scraper.Clock, hasher scraper.Hasher, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: store, clock: clock, hasher: hasher, ttl: ttl, logger: logger}
}

// TTL returns the default time-to-live applied by Put callers.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Key derives the cache key for an album URL. Only the URL contributes.
func (c *Cache) Key(albumURL string) (string, error) {
	key, err := c.hasher.Hash([]byte(strings.TrimSpace(albumURL)))
	if err != nil {
		return "", fmt.Errorf("derive cache key: %w", err)
	}
	return key, nil
}

// Get returns the payload stored under key if it has not expired.
// Expired entries are removed. Unreadable entries are reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]scraper.PhotoRecord, bool) {
	entry, err := c.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("ignoring unreadable cache entry", zap.String("cache_key", key), zap.Error(err))
		}
		return nil, false
	}
	if c.clock.Now().UnixMilli() > entry.Expiry {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("failed to evict expired cache entry", zap.String("cache_key", key), zap.Error(err))
		}
		c.logger.Debug("cache entry expired", zap.String("cache_key", key))
		return nil, false
	}
	return entry.Payload, true
}

// Put stores payload under key until now+ttl.
func (c *Cache) Put(ctx context.Context, key string, payload []scraper.PhotoRecord, ttl time.Duration) error {
	if payload == nil {
		payload = []scraper.PhotoRecord{}
	}
	entry := Entry{
		Expiry:  c.clock.Now().Add(ttl).UnixMilli(),
		Payload: payload,
	}
	if err := c.store.Save(ctx, key, entry); err != nil {
		return fmt.Errorf("save cache entry %s: %w", key, err)
	}
	return nil
}

// Scraper is the traversal a ReadThrough cache falls back to on a miss.
type Scraper interface {
	Scrape(ctx context.Context, albumURL string) (scraper.Result, error)
}

// ReadThrough serves album results from the cache, scraping and storing on a miss.
type ReadThrough struct {
	cache   *Cache
	scraper Scraper
	logger  *zap.Logger
}

// NewReadThrough wires a Cache in front of a Scraper.
func NewReadThrough(cache *Cache, s Scraper, logger *zap.Logger) *ReadThrough {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadThrough{cache: cache, scraper: s, logger: logger}
}

// Scrape returns the photos for albumURL and whether they came from the cache.
// Failed traversals are not cached. A failure to store a fresh result is
// logged and the result is still returned.
func (r *ReadThrough) Scrape(ctx context.Context, albumURL string) ([]scraper.PhotoRecord, bool, error) {
	key, err := r.cache.Key(albumURL)
	if err != nil {
		return nil, false, err
	}
	if photos, ok := r.cache.Get(ctx, key); ok {
		metrics.ObserveCacheLookup(true)
		r.logger.Debug("cache hit", zap.String("album_url", scraper.RedactKey(albumURL)), zap.String("cache_key", key))
		return photos, true, nil
	}
	metrics.ObserveCacheLookup(false)

	result, err := r.scraper.Scrape(ctx, albumURL)
	if err != nil {
		return nil, false, err
	}
	if err := r.cache.Put(ctx, key, result.Photos, r.cache.TTL()); err != nil {
		r.logger.Warn("failed to cache scrape result", zap.String("album_url", scraper.RedactKey(albumURL)), zap.Error(err))
	}
	return result.Photos, false, nil
}
