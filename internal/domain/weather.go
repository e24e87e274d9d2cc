package domain

// WeatherPayload is the daily forecast snapshot cached per stop.
// Fields follow the no-auth forecast API: daily max/min temperature in
// Celsius, precipitation probability as a percentage, and a numeric
// condition code.
type WeatherPayload struct {
	MaxTempC          float64 `json:"max_temp_c"`
	MinTempC          float64 `json:"min_temp_c"`
	PrecipitationProb float64 `json:"precipitation_probability"`
	ConditionCode     int     `json:"condition_code"`
	AsOfDate          string  `json:"as_of_date"` // "2006-01-02"
}

// WeatherCacheEntry is one time-boxed cache slot, keyed by stop id.
// Invariant: Expires > LastFetched. Stale entries are never evicted
// proactively; they are treated as misses and overwritten on the next fetch.
type WeatherCacheEntry struct {
	Payload     WeatherPayload `json:"payload"`
	LastFetched int64          `json:"lastFetched"` // epoch ms
	Expires     int64          `json:"expires"`     // epoch ms
}

// ValidAt reports whether the entry is still fresh at the given epoch-ms
// instant. Validity is strict: an entry whose Expires equals now is already
// expired.
func (e WeatherCacheEntry) ValidAt(nowMillis int64) bool {
	return nowMillis < e.Expires
}
