// Package merge combines a canonical trip document with a sparse
// user-modification record into the materialized view the UI renders, and
// provides the inverse used for export. Everything here is pure and
// synchronous: no I/O, no clocks, inputs are never mutated.
package merge

import "github.com/kevinlin/wanderlog/internal/domain"

// Materialize overlays mods onto trip and returns a new document.
//
// For every activity and scenic waypoint across all stops the done flag
// becomes mods.ActivityStatus[id], defaulting to false when absent. Where
// mods.ActivityOrders[stopID] is present the stop's activity list is
// reordered so position i holds the activity whose original index is
// order[i]. Order entries that fall outside the live array, or that repeat,
// are skipped; activities the order never references keep their relative
// original order at the tail. Ids in ActivityStatus that match no activity
// are ignored — an orphaned modification is not an error.
func Materialize(trip domain.TripDocument, mods domain.UserModifications) domain.TripDocument {
	out := trip
	out.Stops = make([]domain.Stop, len(trip.Stops))

	for i, stop := range trip.Stops {
		s := stop
		s.Activities = overlayStatus(stop.Activities, mods.ActivityStatus)
		s.ScenicWaypoints = overlayStatus(stop.ScenicWaypoints, mods.ActivityStatus)
		if order, ok := mods.ActivityOrders[stop.StopID]; ok {
			s.Activities = applyOrder(s.Activities, order)
		}
		out.Stops[i] = s
	}
	return out
}

// Dehydrate extracts a modification record from a materialized trip for the
// export path: every activity and waypoint carrying a status contributes its
// done flag. ActivityOrders is left empty on purpose — custom order is
// captured at mutation time (see ComposeOrder) and cannot be recovered from
// the final ordering alone.
func Dehydrate(materialized domain.TripDocument) domain.UserModifications {
	mods := domain.NewUserModifications()
	for _, stop := range materialized.Stops {
		for _, a := range stop.CombinedActivities() {
			if a.Status != nil {
				mods.ActivityStatus[a.ActivityID] = a.Status.Done
			}
		}
	}
	return mods
}

// ComposeOrder returns the stored original-index order after moving the
// element at display position from to display position to.
//
// The UI reorders against the currently displayed list, while stored orders
// index the original activity array; composing through the existing stored
// order keeps a second reorder correct after the first. stored may be nil,
// partial, or stale — it is normalized over activityCount first. Out-of-range
// positions return the normalized order unchanged.
func ComposeOrder(stored []int, activityCount, from, to int) []int {
	order := normalizeOrder(stored, activityCount)
	if from < 0 || from >= len(order) || to < 0 || to >= len(order) || from == to {
		return order
	}
	moved := order[from]
	order = append(order[:from], order[from+1:]...)

	out := make([]int, 0, len(order)+1)
	out = append(out, order[:to]...)
	out = append(out, moved)
	out = append(out, order[to:]...)
	return out
}

// overlayStatus returns a copy of activities with each Status set from the
// done-status map (absent ids become not-done).
func overlayStatus(activities []domain.Activity, status map[string]bool) []domain.Activity {
	if activities == nil {
		return nil
	}
	out := make([]domain.Activity, len(activities))
	for i, a := range activities {
		a.Status = &domain.ActivityStatus{Done: status[a.ActivityID]}
		out[i] = a
	}
	return out
}

// applyOrder rearranges activities so position i holds the activity at
// original index order[i], skipping out-of-range and duplicate entries and
// appending unreferenced activities in their original order.
func applyOrder(activities []domain.Activity, order []int) []domain.Activity {
	used := make([]bool, len(activities))
	out := make([]domain.Activity, 0, len(activities))
	for _, idx := range order {
		if idx < 0 || idx >= len(activities) || used[idx] {
			continue
		}
		out = append(out, activities[idx])
		used[idx] = true
	}
	for idx, a := range activities {
		if !used[idx] {
			out = append(out, a)
		}
	}
	return out
}

// normalizeOrder turns an arbitrary stored order into a full permutation of
// [0, activityCount): invalid and duplicate entries drop out, missing indices
// append in ascending order.
func normalizeOrder(stored []int, activityCount int) []int {
	used := make([]bool, activityCount)
	out := make([]int, 0, activityCount)
	for _, idx := range stored {
		if idx < 0 || idx >= activityCount || used[idx] {
			continue
		}
		out = append(out, idx)
		used[idx] = true
	}
	for idx := 0; idx < activityCount; idx++ {
		if !used[idx] {
			out = append(out, idx)
		}
	}
	return out
}
