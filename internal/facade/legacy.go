package facade

import (
	"sort"
	"strconv"

	"github.com/kevinlin/wanderlog/internal/domain"
)

// Local-store keys written by earlier releases. They are read during
// migration and never written going forward; the originals are left in place
// so a rollback still finds them.
const (
	legacyStopStatusKey     = "stop_status"
	legacyLastViewedStopKey = "last_viewed_stop"
)

// legacyStopRecord is the old single-tier per-stop shape: a done map plus an
// index→index order object (JSON object keys are stringified positions).
type legacyStopRecord struct {
	Activities    map[string]legacyActivity `json:"activities"`
	ActivityOrder map[string]int            `json:"activityOrder"`
}

type legacyActivity struct {
	Done bool `json:"done"`
}

// migrateLegacyLocal upgrades legacy local data into the current
// UserModifications shape for tripID. The upgrade is idempotent: once a
// current-shape record exists for the trip, legacy data is never consulted
// again. Cloud state is untouched — the migrated record reaches the cloud
// through the normal save path on the next mutation.
func (f *Facade) migrateLegacyLocal(tripID string) {
	newKey := modificationsKey(tripID)
	if f.local.Has(newKey) {
		return
	}

	legacy := map[string]legacyStopRecord{}
	hasStatus := f.local.GetJSON(legacyStopStatusKey, &legacy) && len(legacy) > 0
	lastViewed := f.legacyLastViewedStop()
	if !hasStatus && lastViewed == "" {
		return
	}

	mods := domain.NewUserModifications()
	for stopID, rec := range legacy {
		for activityID, a := range rec.Activities {
			mods.ActivityStatus[activityID] = a.Done
		}
		if order := orderFromLegacyMap(rec.ActivityOrder); order != nil {
			mods.ActivityOrders[stopID] = order
		}
	}
	mods.LastViewedBase = lastViewed

	f.setLocalJSON(newKey, mods)
	f.met.LegacyMigrations.Inc()
	f.log.Info("migrated legacy local modifications", "trip_id", tripID,
		"activity_flags", len(mods.ActivityStatus), "ordered_stops", len(mods.ActivityOrders))
}

// legacyLastViewedStop reads the old last-viewed key, which older releases
// stored either as a bare string or as a JSON-quoted one.
func (f *Facade) legacyLastViewedStop() string {
	var quoted string
	if f.local.GetJSON(legacyLastViewedStopKey, &quoted) {
		return quoted
	}
	raw, _ := f.local.Get(legacyLastViewedStopKey)
	return raw
}

// orderFromLegacyMap flattens the legacy {position: originalIndex} object
// into the current ordered slice. Positions sort numerically; non-numeric
// keys are dropped.
func orderFromLegacyMap(m map[string]int) []int {
	if len(m) == 0 {
		return nil
	}
	positions := make([]int, 0, len(m))
	byPos := make(map[int]int, len(m))
	for k, idx := range m {
		pos, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		positions = append(positions, pos)
		byPos[pos] = idx
	}
	if len(positions) == 0 {
		return nil
	}
	sort.Ints(positions)

	order := make([]int, 0, len(positions))
	for _, pos := range positions {
		order = append(order, byPos[pos])
	}
	return order
}
