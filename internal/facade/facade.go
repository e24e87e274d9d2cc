// Package facade is the single entry point the API handlers call for trip
// and modification storage. It decides between the cloud document store and
// the local key/value store, migrates legacy local formats, and guarantees
// that every cloud-bound write is mirrored (best effort) to the local store
// for offline resilience.
//
// Failure policy: storage hiccups are recovered as low in the stack as
// possible. Reads fall back cloud → local → empty default; writes land
// locally first and sync to the cloud in the background. Only data-validity
// failures (ErrValidation) and explicit cloud trip operations surface errors
// to the caller.
package facade

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kevinlin/wanderlog/internal/domain"
	"github.com/kevinlin/wanderlog/internal/kvstore"
	"github.com/kevinlin/wanderlog/internal/metrics"
)

// cloudSyncTimeout bounds each background cloud write so a dead network
// cannot pin goroutines until process exit.
const cloudSyncTimeout = 10 * time.Second

// CloudStore defines the cloud document store operations the façade depends
// on. Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets façade
// tests inject a failing or recording cloud without a database.
type CloudStore interface {
	GetTrip(ctx context.Context, tripID string) (domain.TripDocument, error)
	CreateTrip(ctx context.Context, doc domain.TripDocument, id string) (domain.TripDocument, error)
	UpdateTrip(ctx context.Context, tripID string, partial map[string]any) error
	GetUserModifications(ctx context.Context, tripID string) (domain.UserModifications, error)
	SaveUserModifications(ctx context.Context, tripID string, mods domain.UserModifications) error
}

// Facade coordinates the two storage tiers.
type Facade struct {
	cloud CloudStore
	local *kvstore.Store
	log   *slog.Logger
	met   *metrics.Collector

	// now is the clock; overridable in tests.
	now func() time.Time

	// wg tracks in-flight background cloud syncs so Flush can wait for them.
	wg sync.WaitGroup

	mu          sync.Mutex
	currentTrip string
}

// New constructs a Facade over the given tiers.
func New(cloud CloudStore, local *kvstore.Store, log *slog.Logger, met *metrics.Collector) *Facade {
	if log == nil {
		log = slog.Default()
	}
	if met == nil {
		met = metrics.NewCollector()
	}
	return &Facade{
		cloud: cloud,
		local: local,
		log:   log,
		met:   met,
		now:   time.Now,
	}
}

// OpenTrip records tripID as the session's current trip and runs the
// one-time legacy local-format migration for it. Call it when a trip is
// opened, before any SaveCurrent* convenience call; those calls are silently
// skipped until a trip is open.
func (f *Facade) OpenTrip(tripID string) {
	f.mu.Lock()
	f.currentTrip = tripID
	f.mu.Unlock()

	f.migrateLegacyLocal(tripID)
}

// CurrentTrip returns the trip id set by OpenTrip, or "" when none is open.
func (f *Facade) CurrentTrip() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentTrip
}

// Flush waits for all in-flight background cloud syncs to complete.
// Call it during shutdown (and in tests) so queued writes are not lost.
func (f *Facade) Flush() {
	f.wg.Wait()
}

// modificationsKey namespaces the local modification record per trip.
func modificationsKey(tripID string) string {
	return "user_modifications_" + tripID
}
