package facade

import (
	"context"
	"time"

	"github.com/kevinlin/wanderlog/internal/domain"
	"github.com/kevinlin/wanderlog/internal/merge"
)

// GetUserModifications returns the modification record for a trip.
//
// Read order: cloud first; a successful cloud read is mirrored into the
// local store as a cache. On any cloud failure the last locally cached
// record is returned with degraded=true. When neither tier has data the
// empty default shape is returned. This call never fails — a clean empty
// cloud read is not degraded, and local problems collapse into the default.
func (f *Facade) GetUserModifications(ctx context.Context, tripID string) (domain.UserModifications, bool) {
	f.migrateLegacyLocal(tripID)

	mods, err := f.cloud.GetUserModifications(ctx, tripID)
	if err == nil {
		f.setLocalJSON(modificationsKey(tripID), mods)
		return mods, false
	}

	f.log.Warn("cloud modification read failed, falling back to local store",
		"trip_id", tripID, "error", err)
	f.met.FallbackReads.Inc()

	cached := domain.NewUserModifications()
	if f.local.GetJSON(modificationsKey(tripID), &cached) {
		cached.Normalize()
	}
	return cached, true
}

// SaveUserModifications persists a modification record.
//
// The local store is written first, synchronously, so the record survives a
// reload even before any network round-trip. The cloud write then runs in
// the background; failures are logged and counted, never surfaced — the
// local copy remains the source of truth until a later sync succeeds.
// There is no retry queue.
func (f *Facade) SaveUserModifications(ctx context.Context, tripID string, mods domain.UserModifications) {
	mods.Normalize()
	f.setLocalJSON(modificationsKey(tripID), mods)

	f.wg.Add(1)
	cloudCtx := context.WithoutCancel(ctx)
	snapshot := mods.Clone()
	go func() {
		defer f.wg.Done()
		ctx, cancel := context.WithTimeout(cloudCtx, cloudSyncTimeout)
		defer cancel()

		f.met.CloudSyncs.Inc()
		if err := f.cloud.SaveUserModifications(ctx, tripID, snapshot); err != nil {
			f.met.CloudSyncFailures.Inc()
			f.log.Warn("cloud modification sync failed, local copy retained",
				"trip_id", tripID, "error", err)
		}
	}()
}

// SaveCurrentModifications saves against the session's current trip.
// When no trip is open the save is skipped with a warning — losing a save
// silently is preferable to failing a UI action that cannot present the
// error anywhere.
func (f *Facade) SaveCurrentModifications(ctx context.Context, mods domain.UserModifications) {
	tripID := f.CurrentTrip()
	if tripID == "" {
		f.log.Warn("modification save skipped: no trip open")
		return
	}
	f.SaveUserModifications(ctx, tripID, mods)
}

// ToggleActivity sets the done flag for one activity or waypoint id and
// persists the updated record.
func (f *Facade) ToggleActivity(ctx context.Context, tripID, activityID string, done bool) domain.UserModifications {
	mods, _ := f.GetUserModifications(ctx, tripID)
	mods.ActivityStatus[activityID] = done
	f.SaveUserModifications(ctx, tripID, mods)
	return mods
}

// ReorderActivities moves the activity at display position from to display
// position to within a stop and persists the resulting order.
//
// Stored orders index the original (pre-reorder) activity array while the UI
// reorders the displayed list, so the move is composed through the stored
// permutation — a second reorder after a first lands where the user dragged
// it. activityCount is the stop's live activity count.
func (f *Facade) ReorderActivities(ctx context.Context, tripID, stopID string, activityCount, from, to int) domain.UserModifications {
	mods, _ := f.GetUserModifications(ctx, tripID)
	mods.ActivityOrders[stopID] = merge.ComposeOrder(mods.ActivityOrders[stopID], activityCount, from, to)
	f.SaveUserModifications(ctx, tripID, mods)
	return mods
}

// SetLastViewed records the stop the user is looking at, stamping the
// selection time, and persists the updated record.
func (f *Facade) SetLastViewed(ctx context.Context, tripID, stopID string) domain.UserModifications {
	mods, _ := f.GetUserModifications(ctx, tripID)
	mods.LastViewedBase = stopID
	mods.LastViewedDate = f.now().UTC().Format(time.RFC3339)
	f.SaveUserModifications(ctx, tripID, mods)
	return mods
}

// setLocalJSON writes through to the local store, logging and counting
// failures. Local persistence must never break the caller.
func (f *Facade) setLocalJSON(key string, v any) {
	if err := f.local.SetJSON(key, v); err != nil {
		f.met.LocalWriteErrs.Inc()
		f.log.Warn("local store write failed", "key", key, "error", err)
	}
}
