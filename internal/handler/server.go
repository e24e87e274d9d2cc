// Package handler implements the HTTP handlers for the Wanderlog API.
// All handlers are methods on Server; they are split into resource-specific
// files (trip.go, modifications.go, etc.) but share the Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevinlin/wanderlog/internal/domain"
)

// Storage defines the façade operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a fake without a database or a local store directory.
type Storage interface {
	OpenTrip(tripID string)
	GetTrip(ctx context.Context, tripID string) (domain.TripDocument, error)
	CreateTrip(ctx context.Context, doc domain.TripDocument, id string) (domain.TripDocument, error)
	UpdateTrip(ctx context.Context, tripID string, partial map[string]any) error
	MaterializedTrip(ctx context.Context, tripID string) (domain.TripDocument, bool, error)

	GetUserModifications(ctx context.Context, tripID string) (domain.UserModifications, bool)
	SaveUserModifications(ctx context.Context, tripID string, mods domain.UserModifications)
	ToggleActivity(ctx context.Context, tripID, activityID string, done bool) domain.UserModifications
	ReorderActivities(ctx context.Context, tripID, stopID string, activityCount, from, to int) domain.UserModifications
	SetLastViewed(ctx context.Context, tripID, stopID string) domain.UserModifications

	LayerPreferences() domain.LayerPreferences
	SaveLayerPreferences(prefs domain.LayerPreferences) error
}

// WeatherProvider is the slice of the weather cache the handlers use.
type WeatherProvider interface {
	GetOrFetch(ctx context.Context, tripID, stopID string, coords domain.Coordinates) (domain.WeatherPayload, error)
}

// DegradedHeader is set to "true" on responses whose modification data came
// from the local fallback tier instead of the cloud store.
const DegradedHeader = "X-Wanderlog-Degraded"

// Server implements all API endpoints.
type Server struct {
	store   Storage
	weather WeatherProvider
}

// NewServer constructs the Server with all its dependencies.
func NewServer(store Storage, weather WeatherProvider) *Server {
	return &Server{store: store, weather: weather}
}

// Register mounts every route on r. Middleware is wired by the caller.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.GetHealth)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Patch("/", s.UpdateTrip)
			r.Get("/export", s.ExportTrip)

			r.Get("/modifications", s.GetModifications)
			r.Put("/modifications", s.PutModifications)
			r.Put("/last-viewed", s.PutLastViewed)
			r.Post("/activities/{activityID}/status", s.PostActivityStatus)
			r.Post("/stops/{stopID}/reorder", s.PostReorder)
			r.Get("/stops/{stopID}/weather", s.GetStopWeather)
		})
	})

	r.Get("/preferences/layers", s.GetLayerPreferences)
	r.Put("/preferences/layers", s.PutLayerPreferences)
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody decodes the request body into dest, returning false after
// writing a 422 when the body is missing or malformed.
func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, requestBody("request body is missing or malformed"))
		return false
	}
	return true
}
