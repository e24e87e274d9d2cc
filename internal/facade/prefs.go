package facade

import (
	"fmt"

	"github.com/kevinlin/wanderlog/internal/domain"
)

// layerPreferencesKey holds the map display preferences in the local store.
const layerPreferencesKey = "map_layer_preferences"

// LayerPreferences returns the stored map display preferences, validated on
// read. A missing record, malformed JSON, or a structurally invalid value
// all reset to defaults (roadmap base, overlays off) — never an error.
func (f *Facade) LayerPreferences() domain.LayerPreferences {
	prefs := domain.DefaultLayerPreferences()
	if !f.local.GetJSON(layerPreferencesKey, &prefs) {
		return domain.DefaultLayerPreferences()
	}
	if !prefs.Valid() {
		f.log.Warn("stored layer preferences failed validation, resetting to defaults",
			"map_type", prefs.MapType)
		return domain.DefaultLayerPreferences()
	}
	return prefs
}

// SaveLayerPreferences validates and stores the map display preferences.
// Only validation is an error; a local write failure is logged and swallowed
// like every other local persistence hiccup.
func (f *Facade) SaveLayerPreferences(prefs domain.LayerPreferences) error {
	if !prefs.Valid() {
		return fmt.Errorf("%w: unknown map type %q", domain.ErrValidation, prefs.MapType)
	}
	f.setLocalJSON(layerPreferencesKey, prefs)
	return nil
}
