// Package location resolves a best-effort geographic location from whatever
// hint a request carries: explicit coordinates, the client IP, or nothing.
// Strategies are tried in order and the first success wins; total failure
// falls back to the statically configured default, so resolution never fails.
package location

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/agrisense/agrisense-backend/internal/sensor"
)

// errNotApplicable signals that a strategy has nothing to work with for the
// given hint and the next strategy should be tried.
var errNotApplicable = errors.New("hint not applicable")

// ReverseGeocoder refines coordinates into place names.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (sensor.Location, error)
}

// ForwardGeocoder searches locations by free-text place query.
type ForwardGeocoder interface {
	Search(ctx context.Context, query string, limit int) ([]sensor.Location, error)
}

// IPLocator geolocates a client IP address.
type IPLocator interface {
	Locate(ctx context.Context, ip string) (sensor.Location, error)
}

// Strategy is one layer of the resolution chain.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, hint sensor.Hint) (sensor.Location, error)
}

// Resolver tries strategies in order, caching successful external
// resolutions. It implements sensor.LocationResolver.
type Resolver struct {
	cache      *Cache
	strategies []Strategy
	search     ForwardGeocoder
	fallback   sensor.Location
	timeout    time.Duration
	maxResults int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSearch attaches the forward geocoder used by SearchByName.
func WithSearch(fg ForwardGeocoder) ResolverOption {
	return func(r *Resolver) { r.search = fg }
}

// WithTimeout bounds each strategy's outbound call.
func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.timeout = d }
}

// WithMaxResults caps SearchByName suggestion lists.
func WithMaxResults(n int) ResolverOption {
	return func(r *Resolver) { r.maxResults = n }
}

// NewResolver creates a Resolver over the given strategy chain. The fallback
// location is returned when no strategy succeeds.
func NewResolver(cache *Cache, fallback sensor.Location, strategies []Strategy, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:      cache,
		strategies: strategies,
		fallback:   fallback,
		timeout:    5 * time.Second,
		maxResults: 5,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the best-effort location for the hint. It never fails.
func (r *Resolver) Resolve(ctx context.Context, hint sensor.Hint) sensor.Location {
	key := hintKey(hint)
	if key != "" {
		if cached, ok := r.cache.Get(key); ok && len(cached) > 0 {
			return cached[0]
		}
	}

	for _, st := range r.strategies {
		resCtx, cancel := context.WithTimeout(ctx, r.timeout)
		loc, err := st.Resolve(resCtx, hint)
		cancel()
		if errors.Is(err, errNotApplicable) {
			continue
		}
		if err != nil {
			log.Printf("location: strategy %s failed: %v", st.Name(), err)
			continue
		}
		if key != "" {
			r.cache.Put(key, []sensor.Location{loc})
		}
		return loc
	}

	return r.fallback
}

// SearchByName looks up a place by free-text query and returns up to limit
// ranked suggestions (the resolver's configured maximum when limit <= 0).
func (r *Resolver) SearchByName(ctx context.Context, query string, limit int) ([]sensor.Location, error) {
	if r.search == nil {
		return nil, errors.New("location search is not configured")
	}
	if limit <= 0 || limit > r.maxResults {
		limit = r.maxResults
	}

	key := "name:" + strings.ToLower(strings.TrimSpace(query))
	if cached, ok := r.cache.Get(key); ok {
		if len(cached) >= limit {
			return cached[:limit], nil
		}
		return cached, nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results, err := r.search.Search(searchCtx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	r.cache.Put(key, results)
	return results, nil
}

// hintKey normalizes a hint into a cache key. An empty hint has no key and is
// never cached: it always resolves to the static default anyway.
func hintKey(hint sensor.Hint) string {
	if hint.Lat != nil && hint.Lon != nil {
		return fmt.Sprintf("%.4f,%.4f", *hint.Lat, *hint.Lon)
	}
	if hint.ClientIP != "" {
		return "ip:" + hint.ClientIP
	}
	return ""
}

// CoordsStrategy reverse-geocodes caller-supplied coordinates. Geocoding
// failure still succeeds with "Unknown" place names: coordinates are good
// data and must not be discarded.
type CoordsStrategy struct {
	Geocoder ReverseGeocoder
}

func (s CoordsStrategy) Name() string { return "coords" }

func (s CoordsStrategy) Resolve(ctx context.Context, hint sensor.Hint) (sensor.Location, error) {
	if hint.Lat == nil || hint.Lon == nil {
		return sensor.Location{}, errNotApplicable
	}

	if s.Geocoder != nil {
		loc, err := s.Geocoder.Reverse(ctx, *hint.Lat, *hint.Lon)
		if err == nil {
			loc.Lat = *hint.Lat
			loc.Lon = *hint.Lon
			return loc, nil
		}
		log.Printf("location: reverse geocode failed for %.4f,%.4f: %v", *hint.Lat, *hint.Lon, err)
	}

	return sensor.Location{
		City:    "Unknown",
		State:   "Unknown",
		Country: "Unknown",
		Lat:     *hint.Lat,
		Lon:     *hint.Lon,
	}, nil
}

// IPStrategy geolocates the client IP. Loopback and empty addresses are not
// applicable; failures escalate to the next strategy.
type IPStrategy struct {
	Locator IPLocator
}

func (s IPStrategy) Name() string { return "ip" }

func (s IPStrategy) Resolve(ctx context.Context, hint sensor.Hint) (sensor.Location, error) {
	ip := hint.ClientIP
	if ip == "" || ip == "127.0.0.1" || ip == "::1" || s.Locator == nil {
		return sensor.Location{}, errNotApplicable
	}
	return s.Locator.Locate(ctx, ip)
}
