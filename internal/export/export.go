// Package export assembles the user-facing itinerary export: a versioned
// JSON file of the materialized trip, plus the sanitized filenames it ships
// under.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kevinlin/wanderlog/internal/domain"
	"github.com/kevinlin/wanderlog/internal/merge"
)

// Build materializes mods onto trip and wraps the result in the export
// envelope, stamping now as the export date.
func Build(trip domain.TripDocument, mods domain.UserModifications, now time.Time) domain.ExportDocument {
	return domain.ExportDocument{
		TripData:   merge.Materialize(trip, mods),
		ExportDate: now.UTC().Format(time.RFC3339),
		Version:    domain.ExportVersion,
	}
}

// Encode writes doc as 2-space-indented JSON with a trailing newline — the
// exact on-disk format users diff against earlier exports.
func Encode(w io.Writer, doc domain.ExportDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export.Encode: %w", err)
	}
	return nil
}

// Filename returns the default export filename for a trip name:
// lowercased, every non-alphanumeric character replaced by an underscore,
// suffixed "_updated.json".
func Filename(tripName string) string {
	return sanitize(tripName) + "_updated.json"
}

// DatedFilename is the dated variant: "_export_<YYYY-MM-DD>.json".
func DatedFilename(tripName string, t time.Time) string {
	return sanitize(tripName) + "_export_" + t.UTC().Format("2006-01-02") + ".json"
}

// sanitize lowercases the name and maps each byte outside [a-z0-9] to one
// underscore, so "My Trip!" becomes "my_trip_".
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
}
