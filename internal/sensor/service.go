package sensor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	// ErrValidation marks a raw payload that is missing a required numeric
	// field. Nothing downstream runs when it is returned.
	ErrValidation = errors.New("invalid sensor payload")
)

// RawReading is the device payload before any enrichment.
type RawReading struct {
	Temperature float64
	Humidity    float64
	GasIndex    float64

	// Rainfall is optional; nil means "not reported" and the weather
	// provider's precipitation (or 0) is used instead.
	Rainfall *float64

	Lat      *float64
	Lon      *float64
	ClientIP string
}

func (r RawReading) validate() error {
	if !isFinite(r.Temperature) {
		return fmt.Errorf("%w: temperature must be a finite number", ErrValidation)
	}
	if !isFinite(r.Humidity) {
		return fmt.Errorf("%w: humidity must be a finite number", ErrValidation)
	}
	if !isFinite(r.GasIndex) {
		return fmt.Errorf("%w: gasIndex must be a finite number", ErrValidation)
	}
	if r.Rainfall != nil && !isFinite(*r.Rainfall) {
		return fmt.Errorf("%w: rainfall must be a finite number", ErrValidation)
	}
	return nil
}

// Service is the ingestion pipeline: validate, resolve location, enrich with
// weather, derive a description, persist. Enrichment steps fail independently
// and silently; only validation and the durable write surface errors.
type Service struct {
	store      Store
	resolver   LocationResolver
	fetcher    WeatherFetcher
	summarizer Summarizer // nil when no generative service is configured

	weatherTimeout time.Duration
	summaryTimeout time.Duration
	language       string

	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSummarizer attaches an optional generative summarizer.
func WithSummarizer(s Summarizer) Option {
	return func(svc *Service) { svc.summarizer = s }
}

// WithLanguage sets the language passed to the summarizer.
func WithLanguage(lang string) Option {
	return func(svc *Service) { svc.language = lang }
}

// WithTimeouts bounds the outbound weather and summary calls.
func WithTimeouts(weather, summary time.Duration) Option {
	return func(svc *Service) {
		svc.weatherTimeout = weather
		svc.summaryTimeout = summary
	}
}

// WithClock injects the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// NewService creates the ingestion pipeline.
func NewService(store Store, resolver LocationResolver, fetcher WeatherFetcher, opts ...Option) *Service {
	svc := &Service{
		store:          store,
		resolver:       resolver,
		fetcher:        fetcher,
		weatherTimeout: 5 * time.Second,
		summaryTimeout: 20 * time.Second,
		language:       "en",
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Ingest runs the pipeline for one raw payload and returns the persisted
// reading. It returns ErrValidation for bad input and the store's error when
// the durable write fails; enrichment failures degrade to defaults.
func (s *Service) Ingest(ctx context.Context, raw RawReading) (Reading, error) {
	if err := raw.validate(); err != nil {
		return Reading{}, err
	}

	loc := s.resolver.Resolve(ctx, Hint{Lat: raw.Lat, Lon: raw.Lon, ClientIP: raw.ClientIP})

	rainfall := 0.0
	if raw.Rainfall != nil {
		rainfall = *raw.Rainfall
	}

	var cond Conditions
	fetchCtx, cancel := context.WithTimeout(ctx, s.weatherTimeout)
	cond, err := s.fetcher.Fetch(fetchCtx, loc.Lat, loc.Lon)
	cancel()
	if err != nil {
		log.Printf("ingest: weather enrichment failed (%s): %v", s.fetcher.Name(), err)
		cond = Conditions{}
	} else if raw.Rainfall == nil {
		rainfall = cond.Precipitation
	}

	description := s.describe(ctx, WeatherContext{
		Temperature: raw.Temperature,
		Humidity:    raw.Humidity,
		Rainfall:    rainfall,
		AirTier:     AirQualityTier(raw.GasIndex),
		Language:    s.language,
		Location:    loc,
	})

	reading := Reading{
		Temperature:        raw.Temperature,
		Humidity:           raw.Humidity,
		GasIndex:           raw.GasIndex,
		Rainfall:           rainfall,
		WindSpeed:          cond.WindSpeed,
		Pressure:           cond.Pressure,
		UVIndex:            cond.UVIndex,
		WeatherDescription: description,
		Location:           loc,
		CreatedAt:          s.now().UTC(),
	}

	stored, err := s.store.Append(ctx, reading)
	if err != nil {
		return Reading{}, fmt.Errorf("persist reading: %w", err)
	}
	return stored, nil
}

// describe prefers the generative summarizer and falls back to the
// deterministic rule engine on any failure or empty response.
func (s *Service) describe(ctx context.Context, wc WeatherContext) string {
	if s.summarizer != nil {
		sumCtx, cancel := context.WithTimeout(ctx, s.summaryTimeout)
		text, err := s.summarizer.SummarizeWeather(sumCtx, wc)
		cancel()
		if err != nil {
			log.Printf("ingest: weather summary failed, using rule engine: %v", err)
		} else if t := strings.TrimSpace(text); t != "" {
			return t
		}
	}
	return Describe(wc.Temperature, wc.Humidity)
}

// Latest delegates to the underlying store.
func (s *Service) Latest(ctx context.Context) (Reading, error) {
	return s.store.Latest(ctx)
}

// Recent delegates to the underlying store.
func (s *Service) Recent(ctx context.Context, limit int) ([]Reading, error) {
	return s.store.Recent(ctx, limit)
}

// Stats delegates to the underlying store.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx)
}
