package providers

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/agrisense/agrisense-backend/internal/sensor"
)

// GoogleGeocoder reverse-geocodes through the Google Maps Geocoding API via
// the kelvins/geocoder bindings. Selected when GEOCODER_API_KEY is set;
// Nominatim is the keyless default. Implements location.ReverseGeocoder.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the API key and returns the geocoder.
// The kelvins bindings hold the key in package state.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

// Reverse refines coordinates into city/state/country. The underlying
// bindings do not take a context, so the call is guarded against an already
// expired deadline before dispatch.
func (g *GoogleGeocoder) Reverse(ctx context.Context, lat, lon float64) (sensor.Location, error) {
	if err := ctx.Err(); err != nil {
		return sensor.Location{}, err
	}

	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		return sensor.Location{}, fmt.Errorf("google reverse geocode: %w", err)
	}
	if len(addresses) == 0 {
		return sensor.Location{}, fmt.Errorf("no address components for %.4f,%.4f", lat, lon)
	}

	addr := addresses[0]
	return sensor.Location{
		City:    addr.City,
		State:   addr.State,
		Country: addr.Country,
		Lat:     lat,
		Lon:     lon,
	}, nil
}
