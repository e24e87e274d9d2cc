// Package weather provides the time-boxed per-stop weather cache and the
// external forecast fetcher behind it.
package weather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kevinlin/wanderlog/internal/domain"
	"github.com/kevinlin/wanderlog/internal/kvstore"
	"github.com/kevinlin/wanderlog/internal/metrics"
)

// cacheKey is the local-store key holding the stopID → entry map.
const cacheKey = "weather_cache"

// DefaultTTL is how long a fetched forecast stays valid.
const DefaultTTL = 6 * time.Hour

// Fetcher retrieves a forecast for a coordinate pair from the external
// weather API. Implementations must honor ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, coords domain.Coordinates) (domain.WeatherPayload, error)
}

// CloudMirror is the optional cloud-side copy of the cache. Mirror writes
// are best effort; only the local tier decides validity.
type CloudMirror interface {
	SaveWeather(ctx context.Context, tripID, stopID string, entry domain.WeatherCacheEntry) error
}

// Cache is the stop-keyed forecast cache. Entries persist in the local store
// so a restart does not refetch every stop; stale entries are treated as
// misses and overwritten, never evicted proactively.
type Cache struct {
	local   *kvstore.Store
	fetcher Fetcher
	mirror  CloudMirror // may be nil
	ttl     time.Duration
	log     *slog.Logger
	met     *metrics.Collector

	// now is the clock; overridable in tests for expiry-boundary checks.
	now func() time.Time
}

// NewCache constructs a Cache. ttl <= 0 selects DefaultTTL; mirror may be
// nil to disable the cloud copy.
func NewCache(local *kvstore.Store, fetcher Fetcher, mirror CloudMirror, ttl time.Duration, log *slog.Logger, met *metrics.Collector) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}
	if met == nil {
		met = metrics.NewCollector()
	}
	return &Cache{
		local:   local,
		fetcher: fetcher,
		mirror:  mirror,
		ttl:     ttl,
		log:     log,
		met:     met,
		now:     time.Now,
	}
}

// GetOrFetch returns the cached forecast for stopID when still valid,
// otherwise fetches a fresh one, stores it with expires = now + ttl, and
// returns it. Fetch failures propagate to the caller: an expired entry is
// never served past its expiry, even as a fallback.
func (c *Cache) GetOrFetch(ctx context.Context, tripID, stopID string, coords domain.Coordinates) (domain.WeatherPayload, error) {
	entries := c.load()
	if entry, ok := entries[stopID]; ok && entry.ValidAt(c.nowMillis()) {
		c.met.WeatherCacheHits.Inc()
		return entry.Payload, nil
	}
	c.met.WeatherCacheMisses.Inc()

	c.met.WeatherFetches.Inc()
	payload, err := c.fetcher.Fetch(ctx, coords)
	if err != nil {
		c.met.WeatherFetchErrs.Inc()
		return domain.WeatherPayload{}, fmt.Errorf("weather.Cache.GetOrFetch: %w", err)
	}

	nowMs := c.nowMillis()
	entry := domain.WeatherCacheEntry{
		Payload:     payload,
		LastFetched: nowMs,
		Expires:     nowMs + c.ttl.Milliseconds(),
	}
	entries[stopID] = entry
	if err := c.local.SetJSON(cacheKey, entries); err != nil {
		c.log.Warn("weather cache write failed", "stop_id", stopID, "error", err)
	}
	if c.mirror != nil {
		if err := c.mirror.SaveWeather(ctx, tripID, stopID, entry); err != nil {
			c.log.Warn("weather cloud mirror write failed", "stop_id", stopID, "error", err)
		}
	}
	return payload, nil
}

// IsValid reports whether a fresh entry exists for stopID. Freshness is
// strict: an entry expiring exactly now is already a miss.
func (c *Cache) IsValid(stopID string) bool {
	entry, ok := c.load()[stopID]
	return ok && entry.ValidAt(c.nowMillis())
}

func (c *Cache) load() map[string]domain.WeatherCacheEntry {
	entries := map[string]domain.WeatherCacheEntry{}
	c.local.GetJSON(cacheKey, &entries)
	return entries
}

func (c *Cache) nowMillis() int64 {
	return c.now().UnixMilli()
}
