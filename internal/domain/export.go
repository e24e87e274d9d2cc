package domain

// ExportVersion is the format version stamped into every export file.
const ExportVersion = "1.0.0"

// ExportDocument is the file handed back to the user: the materialized trip
// (modifications already overlaid), the export timestamp, and the format
// version. It is written as 2-space-indented JSON with a trailing newline.
type ExportDocument struct {
	TripData   TripDocument `json:"tripData"`
	ExportDate string       `json:"exportDate"` // ISO-8601
	Version    string       `json:"version"`
}
