package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kevinlin/wanderlog/internal/domain"
)

// GetModifications handles GET /trips/{tripID}/modifications.
// This call never fails: a cloud outage degrades to the local cache (flagged
// via DegradedHeader) and an untouched trip returns the empty default shape.
func (s *Server) GetModifications(w http.ResponseWriter, r *http.Request) {
	mods, degraded := s.store.GetUserModifications(r.Context(), chi.URLParam(r, "tripID"))
	w.Header().Set(DegradedHeader, strconv.FormatBool(degraded))
	respondJSON(w, http.StatusOK, mods)
}

// PutModifications handles PUT /trips/{tripID}/modifications.
// The write lands in the local store before this returns; the cloud sync is
// asynchronous, so 202 is the honest status.
func (s *Server) PutModifications(w http.ResponseWriter, r *http.Request) {
	var mods domain.UserModifications
	if !decodeBody(w, r, &mods) {
		return
	}
	s.store.SaveUserModifications(r.Context(), chi.URLParam(r, "tripID"), mods)
	w.WriteHeader(http.StatusAccepted)
}

// PostActivityStatus handles POST /trips/{tripID}/activities/{activityID}/status.
// Body: {"done": bool}. Responds with the updated modification record.
func (s *Server) PostActivityStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Done bool `json:"done"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	mods := s.store.ToggleActivity(r.Context(),
		chi.URLParam(r, "tripID"), chi.URLParam(r, "activityID"), body.Done)
	respondJSON(w, http.StatusOK, mods)
}

// PostReorder handles POST /trips/{tripID}/stops/{stopID}/reorder.
// Body: {"from": int, "to": int} — positions in the currently displayed
// activity list. The live activity count comes from the canonical document,
// not the client, so a stale client cannot corrupt the stored order.
func (s *Server) PostReorder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	tripID := chi.URLParam(r, "tripID")
	stopID := chi.URLParam(r, "stopID")

	trip, err := s.store.GetTrip(r.Context(), tripID)
	if err != nil {
		s.tripError(w, err)
		return
	}
	stop, ok := findStop(trip, stopID)
	if !ok {
		respondJSON(w, http.StatusNotFound, notFoundBody("stop not found"))
		return
	}
	if body.From < 0 || body.From >= len(stop.Activities) || body.To < 0 || body.To >= len(stop.Activities) {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("reorder positions out of range"))
		return
	}

	mods := s.store.ReorderActivities(r.Context(), tripID, stopID, len(stop.Activities), body.From, body.To)
	respondJSON(w, http.StatusOK, mods)
}

// PutLastViewed handles PUT /trips/{tripID}/last-viewed.
// Body: {"stop_id": string}. Responds with the updated modification record.
func (s *Server) PutLastViewed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StopID string `json:"stop_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.StopID == "" {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("stop_id is required"))
		return
	}

	mods := s.store.SetLastViewed(r.Context(), chi.URLParam(r, "tripID"), body.StopID)
	respondJSON(w, http.StatusOK, mods)
}

// findStop locates a stop by id in a trip document.
func findStop(trip domain.TripDocument, stopID string) (domain.Stop, bool) {
	for _, stop := range trip.Stops {
		if stop.StopID == stopID {
			return stop, true
		}
	}
	return domain.Stop{}, false
}
