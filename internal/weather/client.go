package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kevinlin/wanderlog/internal/domain"
)

// DefaultBaseURL is the public no-auth forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com"

// fetchTimeout bounds every forecast request; on timeout the call fails like
// any other fetch error and the caller decides what to do.
const fetchTimeout = 5 * time.Second

// Client fetches daily forecasts over HTTP. It implements Fetcher.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client. baseURL "" selects DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: fetchTimeout},
	}
}

// forecastResponse mirrors the daily block of the forecast API response.
// All daily arrays are indexed by day; only day 0 (today) is requested.
type forecastResponse struct {
	Daily struct {
		Time              []string  `json:"time"`
		TemperatureMax    []float64 `json:"temperature_2m_max"`
		TemperatureMin    []float64 `json:"temperature_2m_min"`
		PrecipitationProb []float64 `json:"precipitation_probability_max"`
		WeatherCode       []int     `json:"weather_code"`
	} `json:"daily"`
}

// Fetch retrieves today's forecast for the given coordinates.
// Non-2xx responses and undecodable bodies are errors; there is no fallback.
func (c *Client) Fetch(ctx context.Context, coords domain.Coordinates) (domain.WeatherPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(coords.Lng, 'f', -1, 64))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max,weather_code")
	q.Set("forecast_days", "1")
	q.Set("timezone", "UTC")
	u := c.baseURL + "/v1/forecast?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.WeatherPayload{}, fmt.Errorf("weather.Client.Fetch: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.WeatherPayload{}, fmt.Errorf("weather.Client.Fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.WeatherPayload{}, fmt.Errorf("weather.Client.Fetch: unexpected status %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.WeatherPayload{}, fmt.Errorf("weather.Client.Fetch: decode: %w", err)
	}

	d := body.Daily
	if len(d.Time) == 0 || len(d.TemperatureMax) == 0 || len(d.TemperatureMin) == 0 ||
		len(d.PrecipitationProb) == 0 || len(d.WeatherCode) == 0 {
		return domain.WeatherPayload{}, fmt.Errorf("weather.Client.Fetch: response missing daily values")
	}

	return domain.WeatherPayload{
		MaxTempC:          d.TemperatureMax[0],
		MinTempC:          d.TemperatureMin[0],
		PrecipitationProb: d.PrecipitationProb[0],
		ConditionCode:     d.WeatherCode[0],
		AsOfDate:          d.Time[0],
	}, nil
}
