package sensor

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

// Mock implementations for testing

type mockStore struct {
	mu        sync.Mutex
	readings  []Reading
	appendErr error
}

func (m *mockStore) Append(_ context.Context, r Reading) (Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return Reading{}, m.appendErr
	}
	r.ID = "test-id"
	r.Seq = uint64(len(m.readings) + 1)
	m.readings = append(m.readings, r)
	return r, nil
}

func (m *mockStore) Latest(_ context.Context) (Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.readings) == 0 {
		return Reading{}, errors.New("empty")
	}
	return m.readings[len(m.readings)-1], nil
}

func (m *mockStore) Recent(_ context.Context, _ int) ([]Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Reading{}, m.readings...), nil
}

func (m *mockStore) Stats(_ context.Context) (Stats, error) {
	return Stats{}, nil
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.readings)
}

type staticResolver struct {
	loc Location
}

func (r staticResolver) Resolve(_ context.Context, _ Hint) Location {
	return r.loc
}

type failingFetcher struct{}

func (failingFetcher) Name() string { return "failing" }

func (failingFetcher) Fetch(_ context.Context, _, _ float64) (Conditions, error) {
	return Conditions{}, errors.New("provider unavailable")
}

type fixedFetcher struct {
	cond Conditions
}

func (fixedFetcher) Name() string { return "fixed" }

func (f fixedFetcher) Fetch(_ context.Context, _, _ float64) (Conditions, error) {
	return f.cond, nil
}

type failingSummarizer struct{}

func (failingSummarizer) SummarizeWeather(_ context.Context, _ WeatherContext) (string, error) {
	return "", errors.New("generative service down")
}

var testDefault = Location{
	City:    "Bengaluru",
	State:   "Karnataka",
	Country: "India",
	Lat:     12.9716,
	Lon:     77.5946,
}

func TestIngestRejectsMissingFields(t *testing.T) {
	st := &mockStore{}
	svc := NewService(st, staticResolver{testDefault}, failingFetcher{})

	_, err := svc.Ingest(context.Background(), RawReading{
		Temperature: math.NaN(),
		Humidity:    50,
		GasIndex:    100,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if st.count() != 0 {
		t.Fatalf("expected no stored readings, got %d", st.count())
	}
}

func TestIngestSucceedsWhenAllProvidersFail(t *testing.T) {
	st := &mockStore{}
	svc := NewService(
		st,
		staticResolver{testDefault},
		failingFetcher{},
		WithSummarizer(failingSummarizer{}),
	)

	reading, err := svc.Ingest(context.Background(), RawReading{
		Temperature: 28,
		Humidity:    60,
		GasIndex:    150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reading.WeatherDescription != "Warm" {
		t.Errorf("expected rule-based description %q, got %q", "Warm", reading.WeatherDescription)
	}
	if reading.Rainfall != 0 {
		t.Errorf("expected rainfall 0, got %v", reading.Rainfall)
	}
	if reading.Location != testDefault {
		t.Errorf("expected default location %+v, got %+v", testDefault, reading.Location)
	}
	if reading.WindSpeed != 0 || reading.Pressure != 0 || reading.UVIndex != 0 {
		t.Errorf("expected zeroed enrichment fields, got %+v", reading)
	}
	if st.count() != 1 {
		t.Fatalf("expected one stored reading, got %d", st.count())
	}
}

func TestIngestUsesProviderPrecipitation(t *testing.T) {
	st := &mockStore{}
	svc := NewService(st, staticResolver{testDefault}, fixedFetcher{Conditions{
		WindSpeed:     3.5,
		Pressure:      1012,
		UVIndex:       6,
		Precipitation: 1.2,
	}})

	reading, err := svc.Ingest(context.Background(), RawReading{
		Temperature: 22,
		Humidity:    70,
		GasIndex:    300,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Rainfall != 1.2 {
		t.Errorf("expected provider precipitation 1.2, got %v", reading.Rainfall)
	}
	if reading.WindSpeed != 3.5 || reading.Pressure != 1012 || reading.UVIndex != 6 {
		t.Errorf("enrichment fields not carried: %+v", reading)
	}
	if reading.WeatherDescription != "Cool" {
		t.Errorf("expected %q, got %q", "Cool", reading.WeatherDescription)
	}
}

func TestIngestCallerRainfallWins(t *testing.T) {
	st := &mockStore{}
	svc := NewService(st, staticResolver{testDefault}, fixedFetcher{Conditions{Precipitation: 9}})

	rainfall := 2.5
	reading, err := svc.Ingest(context.Background(), RawReading{
		Temperature: 22,
		Humidity:    70,
		GasIndex:    300,
		Rainfall:    &rainfall,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Rainfall != 2.5 {
		t.Errorf("expected caller rainfall 2.5, got %v", reading.Rainfall)
	}
}

func TestIngestSurfacesPersistenceFailure(t *testing.T) {
	st := &mockStore{appendErr: errors.New("disk full")}
	svc := NewService(st, staticResolver{testDefault}, failingFetcher{})

	_, err := svc.Ingest(context.Background(), RawReading{
		Temperature: 28,
		Humidity:    60,
		GasIndex:    150,
	})
	if err == nil {
		t.Fatal("expected persistence error to surface")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatal("persistence failure must not be a validation error")
	}
}

func TestIngestSetsCreatedAtFromClock(t *testing.T) {
	st := &mockStore{}
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(
		st,
		staticResolver{testDefault},
		failingFetcher{},
		WithClock(func() time.Time { return fixed }),
	)

	reading, err := svc.Ingest(context.Background(), RawReading{
		Temperature: 28,
		Humidity:    60,
		GasIndex:    150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reading.CreatedAt.Equal(fixed) {
		t.Errorf("expected CreatedAt %v, got %v", fixed, reading.CreatedAt)
	}
}
