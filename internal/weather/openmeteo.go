// Package weather fetches current atmospheric conditions for a coordinate
// pair. Fetchers implement sensor.WeatherFetcher; the pipeline treats any
// failure as "no enrichment" and never lets it abort ingestion.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/agrisense/agrisense-backend/internal/sensor"
	"github.com/agrisense/agrisense-backend/internal/upstream"
)

// OpenMeteoFetcher pulls current wind, pressure, UV index, and precipitation
// from the Open-Meteo forecast API. No API key required.
type OpenMeteoFetcher struct {
	name    string
	baseURL string
	httpCfg upstream.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoFetcher creates the fetcher.
func NewOpenMeteoFetcher(client *http.Client) *OpenMeteoFetcher {
	return &OpenMeteoFetcher{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: upstream.ClientConfig{
			Client:  client,
			Backoff: upstream.DefaultBackoff(),
		},
		circuit: upstream.NewBreaker("openmeteo"),
	}
}

func (f *OpenMeteoFetcher) Name() string {
	return f.name
}

// Fetch returns current conditions for the coordinates. Missing fields in the
// response simply stay zero; partial data is acceptable.
func (f *OpenMeteoFetcher) Fetch(ctx context.Context, lat, lon float64) (sensor.Conditions, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
		values.Set("current", "wind_speed_10m,surface_pressure,uv_index,precipitation")
		values.Set("wind_speed_unit", "ms")

		u := fmt.Sprintf("%s?%s", f.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := upstream.Do(ctx, f.httpCfg, f.circuit, buildRequest)
	if err != nil {
		return sensor.Conditions{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			WindSpeed     float64 `json:"wind_speed_10m"`
			Pressure      float64 `json:"surface_pressure"`
			UVIndex       float64 `json:"uv_index"`
			Precipitation float64 `json:"precipitation"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return sensor.Conditions{}, err
	}

	return sensor.Conditions{
		WindSpeed:     payload.Current.WindSpeed,
		Pressure:      payload.Current.Pressure,
		UVIndex:       payload.Current.UVIndex,
		Precipitation: payload.Current.Precipitation,
	}, nil
}
