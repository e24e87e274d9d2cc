package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kevinlin/wanderlog/internal/domain"
)

// CreateTrip handles POST /trips.
// The body is a canonical trip document; an id supplied in trip_id is kept,
// otherwise the store assigns a generated one.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var doc domain.TripDocument
	if !decodeBody(w, r, &doc) {
		return
	}

	created, err := s.store.CreateTrip(r.Context(), doc, doc.TripID)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			respondJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		s.internalError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetTrip handles GET /trips/{tripID}.
// Opening a trip makes it the session's current trip and triggers the
// one-time legacy local-data migration. With ?materialized=1 the response is
// the user-facing view (modifications overlaid); the DegradedHeader reports
// whether those modifications came from the local fallback.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	s.store.OpenTrip(tripID)

	if materialized, _ := strconv.ParseBool(r.URL.Query().Get("materialized")); materialized {
		trip, degraded, err := s.store.MaterializedTrip(r.Context(), tripID)
		if err != nil {
			s.tripError(w, err)
			return
		}
		w.Header().Set(DegradedHeader, strconv.FormatBool(degraded))
		respondJSON(w, http.StatusOK, trip)
		return
	}

	trip, err := s.store.GetTrip(r.Context(), tripID)
	if err != nil {
		s.tripError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// UpdateTrip handles PATCH /trips/{tripID}.
// The body is a partial document: only the top-level fields present are
// replaced (e.g. a coordinate correction updates just "stops").
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	var partial map[string]any
	if !decodeBody(w, r, &partial) {
		return
	}

	err := s.store.UpdateTrip(r.Context(), chi.URLParam(r, "tripID"), partial)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			respondJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		s.tripError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tripError maps trip read/write failures onto HTTP statuses.
func (s *Server) tripError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, notFoundBody("trip not found"))
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	default:
		s.internalError(w, err)
	}
}

// internalError hides unexpected failures behind a generic 502: the cloud
// store is the only dependency that can fail here, and its errors are not
// the client's fault.
func (s *Server) internalError(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadGateway, upstreamBody(err.Error()))
}
