// Package scheduler runs the optional device simulator: a periodic job that
// synthesizes raw sensor payloads and pushes them through the ingestion
// pipeline. It is a deployment variant for environments without a physical
// device, off by default.
package scheduler

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/agrisense/agrisense-backend/internal/sensor"
)

// Simulator periodically ingests synthesized readings.
type Simulator struct {
	scheduler *gocron.Scheduler
	service   *sensor.Service
	interval  time.Duration
	rng       *rand.Rand
}

// New creates a Simulator ingesting through service every interval.
func New(service *sensor.Service, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Simulator{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start schedules the job and starts the underlying scheduler.
func (s *Simulator) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		raw := s.nextReading()
		if _, err := s.service.Ingest(ctx, raw); err != nil {
			log.Printf("simulator: ingest failed: %v", err)
			return
		}
		log.Printf("simulator: ingested reading (%.1f°C, %.0f%%, gas %.0f)",
			raw.Temperature, raw.Humidity, raw.GasIndex)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Simulator) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// nextReading synthesizes a payload in realistic field ranges.
func (s *Simulator) nextReading() sensor.RawReading {
	return sensor.RawReading{
		Temperature: 18 + s.rng.Float64()*18,   // 18-36 °C
		Humidity:    30 + s.rng.Float64()*60,   // 30-90 %
		GasIndex:    100 + s.rng.Float64()*700, // 100-800
	}
}
