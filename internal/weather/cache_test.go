package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinlin/wanderlog/internal/domain"
	"github.com/kevinlin/wanderlog/internal/kvstore"
)

type fetcherFunc func(ctx context.Context, coords domain.Coordinates) (domain.WeatherPayload, error)

func (f fetcherFunc) Fetch(ctx context.Context, coords domain.Coordinates) (domain.WeatherPayload, error) {
	return f(ctx, coords)
}

type mirrorFunc func(ctx context.Context, tripID, stopID string, entry domain.WeatherCacheEntry) error

func (f mirrorFunc) SaveWeather(ctx context.Context, tripID, stopID string, entry domain.WeatherCacheEntry) error {
	return f(ctx, tripID, stopID, entry)
}

var testCoords = domain.Coordinates{Lat: -45.0312, Lng: 168.6626}

func testPayload() domain.WeatherPayload {
	return domain.WeatherPayload{
		MaxTempC:          14.2,
		MinTempC:          3.8,
		PrecipitationProb: 20,
		ConditionCode:     3,
		AsOfDate:          "2026-08-30",
	}
}

func newTestCache(t *testing.T, fetcher Fetcher, mirror CloudMirror) *Cache {
	t.Helper()
	local, err := kvstore.New(t.TempDir(), nil)
	require.NoError(t, err)
	return NewCache(local, fetcher, mirror, time.Hour, nil, nil)
}

func TestCache_FetchesOnMissAndCachesResult(t *testing.T) {
	calls := 0
	cache := newTestCache(t, fetcherFunc(func(ctx context.Context, coords domain.Coordinates) (domain.WeatherPayload, error) {
		calls++
		assert.Equal(t, testCoords, coords)
		return testPayload(), nil
	}), nil)

	got, err := cache.GetOrFetch(context.Background(), "trip-1", "stop-1", testCoords)
	require.NoError(t, err)
	assert.Equal(t, testPayload(), got)
	assert.Equal(t, 1, calls)

	// Second read inside the TTL must come from the cache.
	got, err = cache.GetOrFetch(context.Background(), "trip-1", "stop-1", testCoords)
	require.NoError(t, err)
	assert.Equal(t, testPayload(), got)
	assert.Equal(t, 1, calls, "a valid entry must not refetch")
	assert.True(t, cache.IsValid("stop-1"))
	assert.False(t, cache.IsValid("stop-2"))
}

func TestCache_ExpiryBoundaryIsStrict(t *testing.T) {
	calls := 0
	cache := newTestCache(t, fetcherFunc(func(ctx context.Context, coords domain.Coordinates) (domain.WeatherPayload, error) {
		calls++
		return testPayload(), nil
	}), nil)

	fetchedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return fetchedAt }

	_, err := cache.GetOrFetch(context.Background(), "trip-1", "stop-1", testCoords)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	// One millisecond before expiry the entry is still valid.
	cache.now = func() time.Time { return fetchedAt.Add(time.Hour - time.Millisecond) }
	assert.True(t, cache.IsValid("stop-1"))
	_, err = cache.GetOrFetch(context.Background(), "trip-1", "stop-1", testCoords)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// At the expiry instant it is already a miss.
	cache.now = func() time.Time { return fetchedAt.Add(time.Hour) }
	assert.False(t, cache.IsValid("stop-1"))
	_, err = cache.GetOrFetch(context.Background(), "trip-1", "stop-1", testCoords)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entry must refetch")
}

func TestCache_FetchErrorPropagates(t *testing.T) {
	fetchErr := errors.New("upstream down")
	cache := newTestCache(t, fetcherFunc(func(ctx context.Context, coords domain.Coordinates) (domain.WeatherPayload, error) {
		return domain.WeatherPayload{}, fetchErr
	}), nil)

	_, err := cache.GetOrFetch(context.Background(), "trip-1", "stop-1", testCoords)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)
	assert.False(t, cache.IsValid("stop-1"), "a failed fetch must not cache anything")
}

func TestCache_ExpiredEntryNeverServedOnFetchFailure(t *testing.T) {
	calls := 0
	cache := newTestCache(t, fetcherFunc(func(ctx context.Context, coords domain.Coordinates) (domain.WeatherPayload, error) {
		calls++
		if calls == 1 {
			return testPayload(), nil
		}
		return domain.WeatherPayload{}, errors.New("upstream down")
	}), nil)

	fetchedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return fetchedAt }
	_, err := cache.GetOrFetch(context.Background(), "trip-1", "stop-1", testCoords)
	require.NoError(t, err)

	cache.now = func() time.Time { return fetchedAt.Add(2 * time.Hour) }
	_, err = cache.GetOrFetch(context.Background(), "trip-1", "stop-1", testCoords)
	assert.Error(t, err, "stale data is not an acceptable fallback")
}

func TestCache_MirrorReceivesEntryAndFailuresAreTolerated(t *testing.T) {
	var mirrored []string
	mirror := mirrorFunc(func(ctx context.Context, tripID, stopID string, entry domain.WeatherCacheEntry) error {
		mirrored = append(mirrored, tripID+"/"+stopID)
		return errors.New("cloud unreachable")
	})
	cache := newTestCache(t, fetcherFunc(func(ctx context.Context, coords domain.Coordinates) (domain.WeatherPayload, error) {
		return testPayload(), nil
	}), mirror)

	got, err := cache.GetOrFetch(context.Background(), "trip-1", "stop-1", testCoords)
	require.NoError(t, err, "mirror failure must not fail the read")
	assert.Equal(t, testPayload(), got)
	assert.Equal(t, []string{"trip-1/stop-1"}, mirrored)
	assert.True(t, cache.IsValid("stop-1"), "local tier still caches when the mirror is down")
}

func TestCache_EntriesSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	local, err := kvstore.New(dir, nil)
	require.NoError(t, err)

	calls := 0
	fetcher := fetcherFunc(func(ctx context.Context, coords domain.Coordinates) (domain.WeatherPayload, error) {
		calls++
		return testPayload(), nil
	})

	first := NewCache(local, fetcher, nil, time.Hour, nil, nil)
	_, err = first.GetOrFetch(context.Background(), "trip-1", "stop-1", testCoords)
	require.NoError(t, err)

	// A new Cache over the same directory sees the persisted entry.
	reopened, err := kvstore.New(dir, nil)
	require.NoError(t, err)
	second := NewCache(reopened, fetcher, nil, time.Hour, nil, nil)

	got, err := second.GetOrFetch(context.Background(), "trip-1", "stop-1", testCoords)
	require.NoError(t, err)
	assert.Equal(t, testPayload(), got)
	assert.Equal(t, 1, calls, "the persisted entry serves the read")
}
