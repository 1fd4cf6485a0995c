package weather

import (
	"context"
	"testing"
)

func TestSimulatedFetcherRanges(t *testing.T) {
	f := NewSimulatedFetcher(42)

	for i := 0; i < 100; i++ {
		cond, err := f.Fetch(context.Background(), 12.97, 77.59)
		if err != nil {
			t.Fatalf("simulated fetch must not fail: %v", err)
		}
		if cond.WindSpeed < 1 || cond.WindSpeed > 10 {
			t.Errorf("wind speed out of range: %v", cond.WindSpeed)
		}
		if cond.Pressure < 990 || cond.Pressure > 1030 {
			t.Errorf("pressure out of range: %v", cond.Pressure)
		}
		if cond.UVIndex < 0 || cond.UVIndex > 11 {
			t.Errorf("uv index out of range: %v", cond.UVIndex)
		}
		if cond.Precipitation < 0 || cond.Precipitation > 2 {
			t.Errorf("precipitation out of range: %v", cond.Precipitation)
		}
	}
}

func TestSimulatedFetcherDeterministicSeed(t *testing.T) {
	a := NewSimulatedFetcher(7)
	b := NewSimulatedFetcher(7)

	ca, _ := a.Fetch(context.Background(), 0, 0)
	cb, _ := b.Fetch(context.Background(), 0, 0)
	if ca != cb {
		t.Errorf("same seed must produce the same sequence: %+v vs %+v", ca, cb)
	}
}
