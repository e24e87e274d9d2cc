package cloudstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinlin/wanderlog/internal/cloudstore"
	"github.com/kevinlin/wanderlog/internal/domain"
	"github.com/kevinlin/wanderlog/testutil"
)

// newTestStore opens a transaction against the test database and returns a
// Store backed by it. The transaction rolls back when the test finishes,
// giving free per-test isolation with no cleanup SQL.
func newTestStore(t *testing.T) *cloudstore.Store {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return cloudstore.New(tx)
}

func tripDocFixture() domain.TripDocument {
	return domain.TripDocument{
		Name:     "Milford Track",
		Timezone: "Pacific/Auckland",
		Stops: []domain.Stop{
			{
				StopID:      "stop-1",
				Name:        "Glade Wharf",
				Coordinates: &domain.Coordinates{Lat: -44.9, Lng: 167.9},
				Activities: []domain.Activity{
					{ActivityID: "act-1", Name: "Clinton Valley Walk"},
				},
			},
		},
	}
}

// ---- trips -----------------------------------------------------------------

func TestStore_CreateTripAssignsID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTrip(ctx, tripDocFixture(), "")
	require.NoError(t, err)

	assert.NotEmpty(t, created.TripID, "empty id means the store generates one")
	assert.Equal(t, "Milford Track", created.Name)
	_, err = time.Parse(time.RFC3339, created.CreatedAt)
	assert.NoError(t, err, "timestamps come back as ISO-8601 strings")
	_, err = time.Parse(time.RFC3339, created.UpdatedAt)
	assert.NoError(t, err)
}

func TestStore_CreateTripKeepsSuppliedID(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateTrip(context.Background(), tripDocFixture(), "trip-custom")
	require.NoError(t, err)
	assert.Equal(t, "trip-custom", created.TripID)
}

func TestStore_GetTripRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTrip(ctx, tripDocFixture(), "")
	require.NoError(t, err)

	got, err := s.GetTrip(ctx, created.TripID)
	require.NoError(t, err)

	assert.Equal(t, created.TripID, got.TripID)
	assert.Equal(t, created.Name, got.Name)
	require.Len(t, got.Stops, 1)
	assert.Equal(t, "Glade Wharf", got.Stops[0].Name)
	require.NotNil(t, got.Stops[0].Coordinates)
	assert.Equal(t, -44.9, got.Stops[0].Coordinates.Lat)
}

func TestStore_GetTripNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTrip(context.Background(), "no-such-trip")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_UpdateTripMergesPartialFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTrip(ctx, tripDocFixture(), "")
	require.NoError(t, err)

	err = s.UpdateTrip(ctx, created.TripID, map[string]any{"vehicle": "campervan"})
	require.NoError(t, err)

	got, err := s.GetTrip(ctx, created.TripID)
	require.NoError(t, err)
	assert.Equal(t, "campervan", got.Vehicle, "the new field is set")
	assert.Equal(t, created.Name, got.Name, "untouched fields survive the merge")
	require.Len(t, got.Stops, 1, "nested content survives the merge")
}

func TestStore_UpdateTripNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateTrip(context.Background(), "no-such-trip", map[string]any{"vehicle": "ute"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- user modifications ----------------------------------------------------

func TestStore_GetUserModificationsAbsentIsEmptyDefault(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetUserModifications(context.Background(), "untouched-trip")
	require.NoError(t, err, "a missing record is not an error")

	assert.Empty(t, got.ActivityStatus)
	assert.NotNil(t, got.ActivityStatus, "maps are non-nil on the way out")
	assert.NotNil(t, got.ActivityOrders)
}

func TestStore_SaveUserModificationsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mods := domain.NewUserModifications()
	mods.ActivityStatus["act-1"] = true
	mods.ActivityOrders["stop-1"] = []int{1, 0}
	mods.LastViewedBase = "stop-1"
	require.NoError(t, s.SaveUserModifications(ctx, "trip-1", mods))

	got, err := s.GetUserModifications(ctx, "trip-1")
	require.NoError(t, err)

	assert.True(t, got.ActivityStatus["act-1"])
	assert.Equal(t, []int{1, 0}, got.ActivityOrders["stop-1"])
	assert.Equal(t, "stop-1", got.LastViewedBase)
	_, err = time.Parse(time.RFC3339, got.LastViewedDate)
	assert.NoError(t, err, "an absent LastViewedDate is stamped on save")
}

func TestStore_SaveUserModificationsMergeWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := domain.NewUserModifications()
	first.ActivityStatus["act-1"] = true
	require.NoError(t, s.SaveUserModifications(ctx, "trip-1", first))

	second := domain.NewUserModifications()
	second.ActivityStatus["act-2"] = true
	second.LastViewedBase = "stop-2"
	require.NoError(t, s.SaveUserModifications(ctx, "trip-1", second))

	got, err := s.GetUserModifications(ctx, "trip-1")
	require.NoError(t, err)

	// jsonb || replaces top-level keys wholesale: the second record's
	// activityStatus wins, while keys only the first record carried would
	// survive. act-1 lived inside activityStatus, so it is gone.
	assert.True(t, got.ActivityStatus["act-2"])
	assert.False(t, got.ActivityStatus["act-1"])
	assert.Equal(t, "stop-2", got.LastViewedBase)
}

func TestStore_SaveKeepsSuppliedLastViewedDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mods := domain.NewUserModifications()
	mods.LastViewedDate = "2026-08-29T10:00:00Z"
	require.NoError(t, s.SaveUserModifications(ctx, "trip-1", mods))

	got, err := s.GetUserModifications(ctx, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-29T10:00:00Z", got.LastViewedDate)
}

// ---- weather mirror --------------------------------------------------------

func TestStore_WeatherRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := domain.WeatherCacheEntry{
		Payload: domain.WeatherPayload{
			MaxTempC:          11.5,
			MinTempC:          2.0,
			PrecipitationProb: 65,
			ConditionCode:     61,
			AsOfDate:          "2026-08-30",
		},
		LastFetched: 1_700_000_000_000,
		Expires:     1_700_021_600_000,
	}
	require.NoError(t, s.SaveWeather(ctx, "trip-1", "stop-1", entry))

	got, err := s.GetWeather(ctx, "trip-1", "stop-1")
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestStore_SaveWeatherOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := domain.WeatherCacheEntry{LastFetched: 1, Expires: 2}
	second := domain.WeatherCacheEntry{LastFetched: 3, Expires: 4}
	require.NoError(t, s.SaveWeather(ctx, "trip-1", "stop-1", first))
	require.NoError(t, s.SaveWeather(ctx, "trip-1", "stop-1", second))

	got, err := s.GetWeather(ctx, "trip-1", "stop-1")
	require.NoError(t, err)
	assert.Equal(t, second, got, "weather writes are whole-document")
}

func TestStore_GetWeatherNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetWeather(context.Background(), "trip-1", "never-fetched")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_WeatherKeysAreScopedPerStop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveWeather(ctx, "trip-1", "stop-1", domain.WeatherCacheEntry{Expires: 10}))

	_, err := s.GetWeather(ctx, "trip-1", "stop-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
