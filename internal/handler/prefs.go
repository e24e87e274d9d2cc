package handler

import (
	"errors"
	"net/http"

	"github.com/kevinlin/wanderlog/internal/domain"
)

// GetLayerPreferences handles GET /preferences/layers.
// Always succeeds: an invalid or missing stored record comes back as the
// defaults (roadmap base, all overlays off).
func (s *Server) GetLayerPreferences(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.store.LayerPreferences())
}

// PutLayerPreferences handles PUT /preferences/layers.
func (s *Server) PutLayerPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs domain.LayerPreferences
	if !decodeBody(w, r, &prefs) {
		return
	}
	if err := s.store.SaveLayerPreferences(prefs); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			respondJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
