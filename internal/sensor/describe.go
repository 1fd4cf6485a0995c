package sensor

import "math"

// Describe maps temperature and humidity to a short categorical label.
// Rules are ordered and the first match wins: temperature bands are checked
// before humidity bands, so a warm humid day reads "Warm", not "Humid".
func Describe(temperature, humidity float64) string {
	if !isFinite(temperature) || !isFinite(humidity) {
		return "Unknown"
	}
	switch {
	case temperature < 15:
		return "Cold"
	case temperature < 25:
		return "Cool"
	case temperature < 35:
		return "Warm"
	case humidity > 80:
		return "Humid"
	case humidity < 30:
		return "Dry"
	default:
		return "Pleasant"
	}
}

// AirQualityTier buckets a raw MQ2-equivalent gas reading into a coarse 1-4
// tier. The tier is only used as context for generative calls, never stored.
func AirQualityTier(gasIndex float64) int {
	if !isFinite(gasIndex) {
		return 1
	}
	switch {
	case gasIndex < 200:
		return 1
	case gasIndex < 500:
		return 2
	case gasIndex < 800:
		return 3
	default:
		return 4
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
