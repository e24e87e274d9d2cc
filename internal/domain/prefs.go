package domain

// LayerPreferences stores the user's map display choices. The record is
// validated on read; any structural mismatch resets to DefaultLayerPreferences.
type LayerPreferences struct {
	MapType       string        `json:"mapType"`
	OverlayLayers OverlayLayers `json:"overlayLayers"`
}

// OverlayLayers are the optional map overlays, all off by default.
type OverlayLayers struct {
	Traffic   bool `json:"traffic"`
	Transit   bool `json:"transit"`
	Bicycling bool `json:"bicycling"`
}

// validMapTypes are the base layer names the maps SDK accepts.
var validMapTypes = map[string]struct{}{
	"roadmap":   {},
	"satellite": {},
	"hybrid":    {},
	"terrain":   {},
}

// DefaultLayerPreferences is the reset state: roadmap base, all overlays off.
func DefaultLayerPreferences() LayerPreferences {
	return LayerPreferences{MapType: "roadmap"}
}

// Valid reports whether the record can be used as-is. Callers substitute
// DefaultLayerPreferences when it cannot.
func (p LayerPreferences) Valid() bool {
	_, ok := validMapTypes[p.MapType]
	return ok
}
