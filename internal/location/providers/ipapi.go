// Package providers contains the external geolocation and geocoding clients
// used by the location resolver.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/agrisense/agrisense-backend/internal/sensor"
	"github.com/agrisense/agrisense-backend/internal/upstream"
)

// IPAPIClient geolocates IP addresses via the ip-api.com JSON endpoint.
// It implements location.IPLocator.
type IPAPIClient struct {
	baseURL string
	httpCfg upstream.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewIPAPIClient creates the client.
func NewIPAPIClient(client *http.Client) *IPAPIClient {
	return &IPAPIClient{
		baseURL: "http://ip-api.com/json",
		httpCfg: upstream.ClientConfig{
			Client:  client,
			Backoff: upstream.DefaultBackoff(),
		},
		circuit: upstream.NewBreaker("ipapi"),
	}
}

// Locate returns the location of the given IP or an error.
func (c *IPAPIClient) Locate(ctx context.Context, ip string) (sensor.Location, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("fields", "status,message,country,countryCode,regionName,city,lat,lon")

		u := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(ip), values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := upstream.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return sensor.Location{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Status     string  `json:"status"`
		Message    string  `json:"message"`
		Country    string  `json:"country"`
		RegionName string  `json:"regionName"`
		City       string  `json:"city"`
		Lat        float64 `json:"lat"`
		Lon        float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return sensor.Location{}, err
	}

	// ip-api reports failures (reserved ranges, bad IPs) with a 200 body.
	if payload.Status != "success" {
		return sensor.Location{}, fmt.Errorf("ip geolocation failed for %s: %s", ip, payload.Message)
	}

	return sensor.Location{
		City:    payload.City,
		State:   payload.RegionName,
		Country: payload.Country,
		Lat:     payload.Lat,
		Lon:     payload.Lon,
	}, nil
}
