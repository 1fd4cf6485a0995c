package providers

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

// userAgent identifies this service to Nominatim, per the provider's usage
// policy.
const userAgent = "agrisense-backend/1.0"

// NominatimClient talks to the OpenStreetMap Nominatim API. It implements
// both location.ReverseGeocoder and location.ForwardGeocoder.
type NominatimClient struct {
	baseURL string
	httpCfg upstream.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewNominatimClient creates the client.
func NewNominatimClient(client *http.Client) *NominatimClient {
	return &NominatimClient{
		baseURL: "https://nominatim.openstreetmap.org",
		httpCfg: upstream.ClientConfig{
			Client:  client,
			Backoff: upstream.DefaultBackoff(),
		},
		circuit: upstream.NewBreaker("nominatim"),
	}
}

type nominatimAddress struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	State   string `json:"state"`
	Country string `json:"country"`
}

func (a nominatimAddress) place() string {
	switch {
	case a.City != "":
		return a.City
	case a.Town != "":
		return a.Town
	default:
		return a.Village
	}
}

// Reverse refines coordinates into city/state/country.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (sensor.Location, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("format", "jsonv2")
		values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

		u := fmt.Sprintf("%s/reverse?%s", c.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	}

	resp, err := upstream.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return sensor.Location{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Address nominatimAddress `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return sensor.Location{}, err
	}

	if payload.Address.Country == "" && payload.Address.place() == "" {
		return sensor.Location{}, fmt.Errorf("no address components for %.4f,%.4f", lat, lon)
	}

	return sensor.Location{
		City:    payload.Address.place(),
		State:   payload.Address.State,
		Country: payload.Address.Country,
		Lat:     lat,
		Lon:     lon,
	}, nil
}

// Search looks up places by free-text query, returning up to limit ranked
// matches.
func (c *NominatimClient) Search(ctx context.Context, query string, limit int) ([]sensor.Location, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("format", "jsonv2")
		values.Set("q", query)
		values.Set("limit", strconv.Itoa(limit))
		values.Set("addressdetails", "1")

		u := fmt.Sprintf("%s/search?%s", c.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	}

	resp, err := upstream.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Lat     string           `json:"lat"`
		Lon     string           `json:"lon"`
		Address nominatimAddress `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]sensor.Location, 0, len(payload))
	for _, item := range payload {
		lat, latErr := strconv.ParseFloat(item.Lat, 64)
		lon, lonErr := strconv.ParseFloat(item.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		results = append(results, sensor.Location{
			City:    item.Address.place(),
			State:   item.Address.State,
			Country: item.Address.Country,
			Lat:     lat,
			Lon:     lon,
		})
	}
	return results, nil
}
