package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kevinlin/wanderlog/internal/domain"
)

// GetStopWeather handles GET /trips/{tripID}/stops/{stopID}/weather?lat=&lng=.
// Served from the cache when a valid entry exists; otherwise the external
// forecast API is consulted. A failed fetch is surfaced to this caller only
// (502) — an expired cache entry is never served in its place.
func (s *Server) GetStopWeather(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("lat and lng query parameters are required"))
		return
	}

	payload, err := s.weather.GetOrFetch(r.Context(),
		chi.URLParam(r, "tripID"), chi.URLParam(r, "stopID"),
		domain.Coordinates{Lat: lat, Lng: lng})
	if err != nil {
		respondJSON(w, http.StatusBadGateway, upstreamBody("weather fetch failed"))
		return
	}
	respondJSON(w, http.StatusOK, payload)
}
