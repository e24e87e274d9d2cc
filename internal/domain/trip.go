// Package domain contains the core data types for the Wanderlog backend.
// This package has zero external dependencies and is imported by every other
// internal package (kvstore, cloudstore, merge, facade, handler).
package domain

import (
	"fmt"
	"strings"
)

// TripDocument is the canonical itinerary for one road trip.
// It is the top-level aggregate; stops belong to a trip. The document is
// read-mostly: it is created by migration or the cloud store and updated only
// by explicit trip updates (e.g. a coordinate correction). User state lives
// in UserModifications, never here — except for the Status overlay the merge
// engine writes onto a materialized copy.
//
// CreatedAt and UpdatedAt are ISO-8601 strings; the cloud store's native
// timestamp type is converted at the adapter edge.
type TripDocument struct {
	TripID     string   `json:"trip_id,omitempty"`
	Name       string   `json:"name"`
	Timezone   string   `json:"timezone,omitempty"`
	Travellers []string `json:"travellers,omitempty"`
	Vehicle    string   `json:"vehicle,omitempty"`
	Stops      []Stop   `json:"stops"`
	CreatedAt  string   `json:"created_at,omitempty"`
	UpdatedAt  string   `json:"updated_at,omitempty"`
}

// Stop is a base the traveller stays at for one or more nights.
type Stop struct {
	StopID          string           `json:"stop_id"`
	Name            string           `json:"name"`
	StartDate       string           `json:"start_date,omitempty"` // "2006-01-02"
	EndDate         string           `json:"end_date,omitempty"`
	Coordinates     *Coordinates     `json:"coordinates,omitempty"`
	Nights          int              `json:"nights,omitempty"`
	Accommodation   *Accommodation   `json:"accommodation,omitempty"`
	Activities      []Activity       `json:"activities"`
	ScenicWaypoints []ScenicWaypoint `json:"scenic_waypoints,omitempty"`
}

// Activity is a planned point-of-interest visit associated with a stop.
// Location may be entirely absent (some activities are never geocoded).
// Status is a materialized-only overlay: canonical documents carry nil.
type Activity struct {
	ActivityID   string          `json:"activity_id"`
	Name         string          `json:"name"`
	Location     *Location       `json:"location,omitempty"`
	Duration     string          `json:"duration,omitempty"`
	URL          string          `json:"url,omitempty"`
	Remarks      string          `json:"remarks,omitempty"`
	ThumbnailURL string          `json:"thumbnail_url,omitempty"`
	PlaceID      string          `json:"place_id,omitempty"`
	Status       *ActivityStatus `json:"status,omitempty"`
}

// ScenicWaypoint is a drive-through point of interest not requiring a
// stop-level stay. It shares the Activity shape, including the id namespace:
// activity ids are unique within a stop's combined activity+waypoint set.
type ScenicWaypoint = Activity

// ActivityStatus carries the user-visible done flag on a materialized trip.
type ActivityStatus struct {
	Done bool `json:"done"`
}

// Coordinates is a required lat/lng pair (stops always have one).
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is an optional place reference on an activity; any subset of its
// fields may be missing.
type Location struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address string   `json:"address,omitempty"`
}

// Accommodation describes where the traveller sleeps at a stop.
type Accommodation struct {
	Name        string       `json:"name"`
	Address     string       `json:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	URL         string       `json:"url,omitempty"`
}

// Validate checks the structural rules a trip document must satisfy before it
// is persisted or rendered. Violations are reported as ErrValidation with a
// human-readable message; this is the one error category surfaced to the UI
// as a blocking load error.
//
// Rules:
//   - Name must be non-empty.
//   - At least one stop.
//   - Stop ids must be non-empty and unique within the trip.
//   - Activity ids must be unique within each stop's combined
//     activity+waypoint set (the merge engine's join key).
func (t TripDocument) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: trip name is required", ErrValidation)
	}
	if len(t.Stops) == 0 {
		return fmt.Errorf("%w: trip must contain at least one stop", ErrValidation)
	}

	stopIDs := make(map[string]struct{}, len(t.Stops))
	for _, stop := range t.Stops {
		if strings.TrimSpace(stop.StopID) == "" {
			return fmt.Errorf("%w: stop %q is missing a stop_id", ErrValidation, stop.Name)
		}
		if _, dup := stopIDs[stop.StopID]; dup {
			return fmt.Errorf("%w: duplicate stop_id %q", ErrValidation, stop.StopID)
		}
		stopIDs[stop.StopID] = struct{}{}

		seen := make(map[string]struct{}, len(stop.Activities)+len(stop.ScenicWaypoints))
		for _, a := range stop.CombinedActivities() {
			if strings.TrimSpace(a.ActivityID) == "" {
				return fmt.Errorf("%w: stop %q has an activity without an activity_id", ErrValidation, stop.StopID)
			}
			if _, dup := seen[a.ActivityID]; dup {
				return fmt.Errorf("%w: stop %q has duplicate activity_id %q", ErrValidation, stop.StopID, a.ActivityID)
			}
			seen[a.ActivityID] = struct{}{}
		}
	}
	return nil
}

// CombinedActivities returns the stop's activities followed by its scenic
// waypoints — the set within which activity ids are unique.
func (s Stop) CombinedActivities() []Activity {
	out := make([]Activity, 0, len(s.Activities)+len(s.ScenicWaypoints))
	out = append(out, s.Activities...)
	out = append(out, s.ScenicWaypoints...)
	return out
}
