package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/agrisense/agrisense-backend/internal/sensor"
)

var (
	// ErrNoReadings is returned when the store holds no readings yet.
	ErrNoReadings = errors.New("no sensor readings stored")
)

// MemoryStore is a concurrency-safe, append-only in-memory reading store.
// It is the default when no DATABASE_URL is configured and the store used in
// tests.
type MemoryStore struct {
	mu       sync.RWMutex
	readings []sensor.Reading
	seq      uint64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores the reading, assigning its ID and sequence number.
func (s *MemoryStore) Append(_ context.Context, r sensor.Reading) (sensor.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	r.ID = uuid.NewString()
	r.Seq = s.seq
	s.readings = append(s.readings, r)
	return r, nil
}

// Latest returns the reading with the greatest CreatedAt, ties broken by
// insertion order.
func (s *MemoryStore) Latest(_ context.Context) (sensor.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.readings) == 0 {
		return sensor.Reading{}, ErrNoReadings
	}

	latest := s.readings[0]
	for _, r := range s.readings[1:] {
		if r.CreatedAt.After(latest.CreatedAt) ||
			(r.CreatedAt.Equal(latest.CreatedAt) && r.Seq > latest.Seq) {
			latest = r
		}
	}
	return latest, nil
}

// Recent returns up to limit readings ordered by CreatedAt descending.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]sensor.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]sensor.Reading, len(s.readings))
	copy(result, s.readings)

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Seq > result[j].Seq
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Stats computes averages over the full record set. An empty store yields
// zeroed averages and count 0, not an error.
func (s *MemoryStore) Stats(_ context.Context) (sensor.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := sensor.Stats{Count: int64(len(s.readings))}
	if stats.Count == 0 {
		return stats, nil
	}

	var sumTemp, sumHumidity float64
	for _, r := range s.readings {
		sumTemp += r.Temperature
		sumHumidity += r.Humidity
	}
	n := float64(stats.Count)
	stats.AvgTemperature = sumTemp / n
	stats.AvgHumidity = sumHumidity / n
	return stats, nil
}
