package kvstore_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinlin/wanderlog/internal/domain"
	"github.com/kevinlin/wanderlog/internal/kvstore"
)

func newStore(t *testing.T) *kvstore.Store {
	t.Helper()
	store, err := kvstore.New(t.TempDir(), slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	require.NoError(t, err)
	return store
}

func TestStore_SetGetRemove(t *testing.T) {
	store := newStore(t)

	_, ok := store.Get("missing")
	assert.False(t, ok)

	require.NoError(t, store.Set("greeting", "hello"))
	got, ok := store.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", got)
	assert.True(t, store.Has("greeting"))

	require.NoError(t, store.Remove("greeting"))
	assert.False(t, store.Has("greeting"))

	// Removing again is a no-op, not an error.
	assert.NoError(t, store.Remove("greeting"))
}

func TestStore_SetOverwrites(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Set("k", "first"))
	require.NoError(t, store.Set("k", "second"))

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestStore_JSONRoundTrip(t *testing.T) {
	store := newStore(t)

	mods := domain.NewUserModifications()
	mods.ActivityStatus["act-1"] = true
	mods.ActivityOrders["stop-1"] = []int{1, 0}
	require.NoError(t, store.SetJSON("user_modifications_trip-1", mods))

	var got domain.UserModifications
	require.True(t, store.GetJSON("user_modifications_trip-1", &got))
	assert.Equal(t, mods, got)
}

func TestStore_GetJSONMalformedValueIsAMiss(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("user_modifications_trip-1", "invalid json"))

	got := domain.NewUserModifications()
	ok := store.GetJSON("user_modifications_trip-1", &got)

	assert.False(t, ok, "corrupt value reads as absent")
	assert.Equal(t, domain.NewUserModifications(), got, "dest stays at the caller's default")
}

func TestStore_GetJSONWrongShapeIsAMiss(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("prefs", `{"mapType": 42}`))

	var got domain.LayerPreferences
	assert.False(t, store.GetJSON("prefs", &got))
}

func TestStore_KeysNeverEscapeDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := kvstore.New(dir, nil)
	require.NoError(t, err)

	require.NoError(t, store.Set("../../etc/passwd", "x"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "..-..-etc-passwd.json", entries[0].Name())

	got, ok := store.Get("../../etc/passwd")
	require.True(t, ok)
	assert.Equal(t, "x", got)
}

func TestStore_Available(t *testing.T) {
	store := newStore(t)
	assert.True(t, store.Available())
}

func TestStore_AvailableFalseWhenDirectoryGone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "localstore")
	store, err := kvstore.New(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))

	assert.False(t, store.Available())
}
