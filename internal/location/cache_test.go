package location

import (
	"testing"
	"time"

	"github.com/agrisense/agrisense-backend/internal/sensor"
)

func TestCacheTTLExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	cache := NewCache(24*time.Hour, clock)
	loc := []sensor.Location{{City: "Pune", Country: "India", Lat: 18.52, Lon: 73.86}}
	cache.Put("18.5200,73.8600", loc)

	if _, ok := cache.Get("18.5200,73.8600"); !ok {
		t.Fatal("expected fresh entry to be present")
	}

	// Just inside the TTL.
	now = now.Add(24*time.Hour - time.Second)
	if _, ok := cache.Get("18.5200,73.8600"); !ok {
		t.Fatal("expected entry just inside TTL to be present")
	}

	// At the TTL the entry is treated as absent.
	now = now.Add(time.Second)
	if _, ok := cache.Get("18.5200,73.8600"); ok {
		t.Fatal("expected expired entry to be treated as absent")
	}
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	cache := NewCache(time.Hour, nil)
	if _, ok := cache.Get("nope"); ok {
		t.Fatal("expected miss on unknown key")
	}
}

func TestCacheLastWriterWins(t *testing.T) {
	cache := NewCache(time.Hour, nil)
	first := []sensor.Location{{City: "Old"}}
	second := []sensor.Location{{City: "New"}}

	cache.Put("k", first)
	cache.Put("k", second)

	got, ok := cache.Get("k")
	if !ok || len(got) != 1 || got[0].City != "New" {
		t.Fatalf("expected last write to win, got %+v", got)
	}
}
