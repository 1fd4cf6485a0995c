package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/agrisense/agrisense-backend/internal/sensor"
)

// AppConfig is the process configuration, read from the environment.
type AppConfig struct {
	Port string

	// DefaultLocation is the last resort of the location fallback chain.
	DefaultLocation sensor.Location

	// Outbound call bounds.
	GeoTimeout      time.Duration
	WeatherTimeout  time.Duration
	AdvisoryTimeout time.Duration

	// Location cache.
	LocationCacheTTL   time.Duration
	LocationmaxResults int

	// Providers.
	GeocoderAPIKey  string // Google geocoding; Nominatim is used when empty
	WeatherProvider string // "openmeteo" (default) or "simulated"
	AdvisoryAPIURL  string // generative advisory service; optional
	Language        string

	// Persistence. Empty values select the in-memory implementations.
	DatabaseURL string
	RedisURL    string

	SessionTTL   time.Duration
	AuthRequired bool

	// Device simulator (optional deployment variant).
	DeviceSimulator         bool
	DeviceSimulatorInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:            getenvDefault("PORT", "8080"),
		GeocoderAPIKey:  os.Getenv("GEOCODER_API_KEY"),
		WeatherProvider: getenvDefault("WEATHER_PROVIDER", "openmeteo"),
		AdvisoryAPIURL:  os.Getenv("ADVISORY_API_URL"),
		Language:        getenvDefault("ADVISORY_LANGUAGE", "en"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		AuthRequired:    getenvBool("AUTH_REQUIRED", false),
		DeviceSimulator: getenvBool("DEVICE_SIMULATOR", false),
	}

	var err error
	if cfg.GeoTimeout, err = getenvDuration("GEO_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.WeatherTimeout, err = getenvDuration("WEATHER_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.AdvisoryTimeout, err = getenvDuration("ADVISORY_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.LocationCacheTTL, err = getenvDuration("LOCATION_CACHE_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getenvDuration("SESSION_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.DeviceSimulatorInterval, err = getenvDuration("DEVICE_SIMULATOR_INTERVAL", "1m"); err != nil {
		return nil, err
	}
	cfg.LocationmaxResults = getenvInt("LOCATION_SUGGESTION_LIMIT", 5)

	loc, err := loadDefaultLocation()
	if err != nil {
		return nil, err
	}
	cfg.DefaultLocation = loc

	return cfg, nil
}

// loadDefaultLocation reads the static default location used when every
// resolution layer fails.
func loadDefaultLocation() (sensor.Location, error) {
	loc := sensor.Location{
		City:    getenvDefault("DEFAULT_CITY", "Bengaluru"),
		State:   getenvDefault("DEFAULT_STATE", "Karnataka"),
		Country: getenvDefault("DEFAULT_COUNTRY", "India"),
	}

	var err error
	if loc.Lat, err = getenvFloat("DEFAULT_LAT", 12.9716); err != nil {
		return sensor.Location{}, err
	}
	if loc.Lon, err = getenvFloat("DEFAULT_LON", 77.5946); err != nil {
		return sensor.Location{}, err
	}
	return loc, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
