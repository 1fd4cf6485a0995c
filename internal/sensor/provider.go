package sensor

import (
	"context"
)

// LocationResolver turns a hint into a best-effort location. Resolution never
// fails: when every layer is exhausted it returns the configured default.
type LocationResolver interface {
	Resolve(ctx context.Context, hint Hint) Location
}

// WeatherFetcher abstracts the external weather provider (real or simulated).
type WeatherFetcher interface {
	Name() string
	Fetch(ctx context.Context, lat, lon float64) (Conditions, error)
}

// Summarizer produces a natural-language weather description from numeric
// context. It is strictly optional; Describe is the fallback.
type Summarizer interface {
	SummarizeWeather(ctx context.Context, wc WeatherContext) (string, error)
}

// Store is the contract the reading stores (in-memory and Postgres) satisfy.
type Store interface {
	Append(ctx context.Context, r Reading) (Reading, error)
	Latest(ctx context.Context) (Reading, error)
	Recent(ctx context.Context, limit int) ([]Reading, error)
	Stats(ctx context.Context) (Stats, error)
}
