package sensor

import (
	"math"
	"testing"
)

func TestDescribeRuleOrder(t *testing.T) {
	cases := []struct {
		temperature float64
		humidity    float64
		want        string
	}{
		{10, 50, "Cold"},
		{20, 50, "Cool"},
		{30, 50, "Warm"},
		// Temperature bands are checked first: a warm humid day is "Warm",
		// not "Humid".
		{30, 90, "Warm"},
		{36, 90, "Humid"},
		{36, 20, "Dry"},
		{36, 50, "Pleasant"},
		{14.99, 85, "Cold"},
		{math.NaN(), 50, "Unknown"},
		{25, math.Inf(1), "Unknown"},
	}

	for _, tc := range cases {
		if got := Describe(tc.temperature, tc.humidity); got != tc.want {
			t.Errorf("Describe(%v, %v) = %q, want %q", tc.temperature, tc.humidity, got, tc.want)
		}
	}
}

func TestAirQualityTierBoundaries(t *testing.T) {
	cases := []struct {
		gasIndex float64
		want     int
	}{
		{0, 1},
		{199, 1},
		{200, 2},
		{499, 2},
		{500, 3},
		{799, 3},
		{800, 4},
		{5000, 4},
		{math.NaN(), 1},
		{math.Inf(1), 1},
	}

	for _, tc := range cases {
		if got := AirQualityTier(tc.gasIndex); got != tc.want {
			t.Errorf("AirQualityTier(%v) = %d, want %d", tc.gasIndex, got, tc.want)
		}
	}
}
