package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kevinlin/wanderlog/internal/export"
)

// ExportTrip handles GET /trips/{tripID}/export.
// The response is the download file itself: the materialized trip wrapped in
// the versioned export envelope, 2-space-indented with a trailing newline.
// ?dated=1 selects the dated filename variant.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	trip, err := s.store.GetTrip(r.Context(), tripID)
	if err != nil {
		s.tripError(w, err)
		return
	}
	mods, degraded := s.store.GetUserModifications(r.Context(), tripID)

	now := time.Now()
	doc := export.Build(trip, mods, now)

	filename := export.Filename(trip.Name)
	if dated, _ := strconv.ParseBool(r.URL.Query().Get("dated")); dated {
		filename = export.DatedFilename(trip.Name, now)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set(DegradedHeader, strconv.FormatBool(degraded))
	if err := export.Encode(w, doc); err != nil {
		// Headers are already gone; nothing useful left to send.
		return
	}
}
