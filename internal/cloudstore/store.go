// Package cloudstore contains the cloud document store adapter for the
// Wanderlog backend. Documents live in three Postgres collections — trips,
// user_modifications, and weather_cache — each a jsonb blob keyed by a text
// id. No business logic lives here, only SQL and type mapping.
//
// Timestamps on the domain side are always ISO-8601 strings; the timestamptz
// columns are an internal detail converted at this edge.
package cloudstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kevinlin/wanderlog/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the Postgres-backed document store adapter.
type Store struct {
	db db
}

// New constructs a Store backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func New(db db) *Store {
	return &Store{db: db}
}

// GetTrip retrieves a trip document by id.
// Returns domain.ErrNotFound when no such trip exists; any other failure
// (connectivity, permissions) is wrapped and propagated so callers can tell
// a missing document from a failed read.
func (s *Store) GetTrip(ctx context.Context, tripID string) (domain.TripDocument, error) {
	const q = `
		SELECT doc, created_at, updated_at
		FROM trips
		WHERE trip_id = @trip_id`

	var (
		raw                  []byte
		createdAt, updatedAt time.Time
	)
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}).Scan(&raw, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripDocument{}, fmt.Errorf("cloudstore.Store.GetTrip: %w", domain.ErrNotFound)
		}
		return domain.TripDocument{}, fmt.Errorf("cloudstore.Store.GetTrip: %w", err)
	}

	var doc domain.TripDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.TripDocument{}, fmt.Errorf("cloudstore.Store.GetTrip: decode doc: %w", err)
	}
	doc.TripID = tripID
	doc.CreatedAt = toISO(createdAt)
	doc.UpdatedAt = toISO(updatedAt)
	return doc, nil
}

// CreateTrip inserts a trip document, assigning a generated id when id is
// empty, and returns the persisted document with server-observed
// created_at/updated_at stamped as ISO-8601 strings.
func (s *Store) CreateTrip(ctx context.Context, doc domain.TripDocument, id string) (domain.TripDocument, error) {
	if id == "" {
		id = uuid.NewString()
	}
	doc.TripID = id

	raw, err := marshalTripDoc(doc)
	if err != nil {
		return domain.TripDocument{}, fmt.Errorf("cloudstore.Store.CreateTrip: %w", err)
	}

	const q = `
		INSERT INTO trips (trip_id, doc)
		VALUES (@trip_id, @doc::jsonb)
		RETURNING created_at, updated_at`

	var createdAt, updatedAt time.Time
	args := pgx.NamedArgs{"trip_id": id, "doc": raw}
	if err := s.db.QueryRow(ctx, q, args).Scan(&createdAt, &updatedAt); err != nil {
		return domain.TripDocument{}, fmt.Errorf("cloudstore.Store.CreateTrip: %w", err)
	}

	doc.CreatedAt = toISO(createdAt)
	doc.UpdatedAt = toISO(updatedAt)
	return doc, nil
}

// UpdateTrip applies a partial-field merge to an existing trip document and
// stamps updated_at. Top-level fields present in partial replace the stored
// ones; everything else is untouched.
// Returns domain.ErrNotFound when the trip does not exist.
func (s *Store) UpdateTrip(ctx context.Context, tripID string, partial map[string]any) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("cloudstore.Store.UpdateTrip: encode partial: %w", err)
	}

	const q = `
		UPDATE trips
		SET doc        = doc || @partial::jsonb,
		    updated_at = now()
		WHERE trip_id = @trip_id`

	tag, err := s.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "partial": string(raw)})
	if err != nil {
		return fmt.Errorf("cloudstore.Store.UpdateTrip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cloudstore.Store.UpdateTrip: %w", domain.ErrNotFound)
	}
	return nil
}

// GetUserModifications returns the modification record for a trip, or the
// empty default shape when no document exists. Absence is not an error.
func (s *Store) GetUserModifications(ctx context.Context, tripID string) (domain.UserModifications, error) {
	const q = `
		SELECT doc
		FROM user_modifications
		WHERE trip_id = @trip_id`

	var raw []byte
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewUserModifications(), nil
		}
		return domain.UserModifications{}, fmt.Errorf("cloudstore.Store.GetUserModifications: %w", err)
	}

	var mods domain.UserModifications
	if err := json.Unmarshal(raw, &mods); err != nil {
		return domain.UserModifications{}, fmt.Errorf("cloudstore.Store.GetUserModifications: decode doc: %w", err)
	}
	mods.Normalize()
	return mods, nil
}

// SaveUserModifications merge-writes the record for a trip. The upsert
// concatenates jsonb documents, so top-level keys another session wrote and
// this record does not carry survive the write. When LastViewedDate is absent
// the adapter stamps current time.
func (s *Store) SaveUserModifications(ctx context.Context, tripID string, mods domain.UserModifications) error {
	if mods.LastViewedDate == "" {
		mods.LastViewedDate = toISO(time.Now())
	}

	raw, err := json.Marshal(mods)
	if err != nil {
		return fmt.Errorf("cloudstore.Store.SaveUserModifications: encode doc: %w", err)
	}

	const q = `
		INSERT INTO user_modifications (trip_id, doc)
		VALUES (@trip_id, @doc::jsonb)
		ON CONFLICT (trip_id) DO UPDATE
		  SET doc        = user_modifications.doc || excluded.doc,
		      updated_at = now()`

	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "doc": string(raw)}); err != nil {
		return fmt.Errorf("cloudstore.Store.SaveUserModifications: %w", err)
	}
	return nil
}

// GetWeather reads the cached weather entry for a stop from the cloud mirror.
// Returns domain.ErrNotFound when no entry exists for that trip/stop pair.
func (s *Store) GetWeather(ctx context.Context, tripID, stopID string) (domain.WeatherCacheEntry, error) {
	const q = `
		SELECT doc
		FROM weather_cache
		WHERE cache_key = @cache_key`

	var raw []byte
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"cache_key": weatherKey(tripID, stopID)}).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WeatherCacheEntry{}, fmt.Errorf("cloudstore.Store.GetWeather: %w", domain.ErrNotFound)
		}
		return domain.WeatherCacheEntry{}, fmt.Errorf("cloudstore.Store.GetWeather: %w", err)
	}

	var entry domain.WeatherCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.WeatherCacheEntry{}, fmt.Errorf("cloudstore.Store.GetWeather: decode doc: %w", err)
	}
	return entry, nil
}

// SaveWeather overwrites the cached weather entry for a stop. Weather entries
// are whole-document writes — there is nothing to merge.
func (s *Store) SaveWeather(ctx context.Context, tripID, stopID string, entry domain.WeatherCacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cloudstore.Store.SaveWeather: encode doc: %w", err)
	}

	const q = `
		INSERT INTO weather_cache (cache_key, doc)
		VALUES (@cache_key, @doc::jsonb)
		ON CONFLICT (cache_key) DO UPDATE
		  SET doc        = excluded.doc,
		      updated_at = now()`

	args := pgx.NamedArgs{"cache_key": weatherKey(tripID, stopID), "doc": string(raw)}
	if _, err := s.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("cloudstore.Store.SaveWeather: %w", err)
	}
	return nil
}

// marshalTripDoc encodes a trip document for storage. The id and timestamps
// live in their own columns, so they are cleared from the stored blob and
// reattached on read.
func marshalTripDoc(doc domain.TripDocument) (string, error) {
	doc.TripID = ""
	doc.CreatedAt = ""
	doc.UpdatedAt = ""
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode doc: %w", err)
	}
	return string(raw), nil
}

// weatherKey builds the composite cache key for the weather_cache collection.
func weatherKey(tripID, stopID string) string {
	return tripID + "_" + stopID
}

// toISO converts a database timestamp to the ISO-8601 string used everywhere
// on the domain side of this layer.
func toISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
