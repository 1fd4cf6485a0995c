package weather

import (
	"context"
	"math/rand"
	"sync"

	"github.com/agrisense/agrisense-backend/internal/sensor"
)

// SimulatedFetcher produces plausible conditions without any network call.
// It sits behind the same interface as the real provider and is selected by
// WEATHER_PROVIDER=simulated, so the pipeline is identical in every
// environment.
type SimulatedFetcher struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedFetcher creates a fetcher seeded for reproducible runs.
func NewSimulatedFetcher(seed int64) *SimulatedFetcher {
	return &SimulatedFetcher{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (f *SimulatedFetcher) Name() string {
	return "simulated"
}

// Fetch synthesizes conditions in realistic ranges. It never fails.
func (f *SimulatedFetcher) Fetch(_ context.Context, _, _ float64) (sensor.Conditions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return sensor.Conditions{
		WindSpeed:     1 + f.rng.Float64()*9,    // 1-10 m/s
		Pressure:      990 + f.rng.Float64()*40, // 990-1030 hPa
		UVIndex:       f.rng.Float64() * 11,     // 0-11
		Precipitation: f.rng.Float64() * 2,      // 0-2 mm
	}, nil
}
