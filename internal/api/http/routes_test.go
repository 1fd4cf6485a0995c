package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agrisense/agrisense-backend/internal/advisory"
	"github.com/agrisense/agrisense-backend/internal/auth"
	"github.com/agrisense/agrisense-backend/internal/location"
	"github.com/agrisense/agrisense-backend/internal/sensor"
	"github.com/agrisense/agrisense-backend/internal/store"
)

type downFetcher struct{}

func (downFetcher) Name() string { return "down" }

func (downFetcher) Fetch(_ context.Context, _, _ float64) (sensor.Conditions, error) {
	return sensor.Conditions{}, errors.New("unreachable")
}

var testDefault = sensor.Location{
	City: "Bengaluru", State: "Karnataka", Country: "India", Lat: 12.9716, Lon: 77.5946,
}

func newTestApp(t *testing.T) (*fiber.App, *store.MemoryStore) {
	t.Helper()

	memStore := store.NewMemoryStore()
	cache := location.NewCache(24*time.Hour, nil)
	resolver := location.NewResolver(cache, testDefault, nil)
	sensorService := sensor.NewService(memStore, resolver, downFetcher{})
	authService := auth.NewService(auth.NewMemoryAccountStore(), auth.NewMemorySessionStore(nil), time.Hour)
	advisoryService := advisory.NewService(nil, time.Second)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": true, "message": err.Error()})
		},
	})
	RegisterRoutes(app, Dependencies{
		Sensor:    sensorService,
		Locations: resolver,
		Advisory:  advisoryService,
		Auth:      authService,
	})
	return app, memStore
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestIngestRejectsMissingTemperature(t *testing.T) {
	app, memStore := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/sensor-data", map[string]interface{}{
		"humidity": 50,
		"gasIndex": 100,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	stats, err := memStore.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Count != 0 {
		t.Fatalf("expected no stored readings, got %d", stats.Count)
	}
}

func TestIngestSucceedsWithAllProvidersDown(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/sensor-data", map[string]interface{}{
		"temperature": 28,
		"humidity":    60,
		"gasIndex":    150,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}

	var reading sensor.Reading
	if err := json.NewDecoder(resp.Body).Decode(&reading); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if reading.WeatherDescription != "Warm" {
		t.Errorf("expected description Warm, got %q", reading.WeatherDescription)
	}
	if reading.Rainfall != 0 {
		t.Errorf("expected rainfall 0, got %v", reading.Rainfall)
	}
	if reading.Location.City != testDefault.City {
		t.Errorf("expected default location, got %+v", reading.Location)
	}
	if reading.ID == "" {
		t.Error("expected an assigned ID")
	}
}

func TestIngestAcceptsMQ2Alias(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/sensor-data", map[string]interface{}{
		"temperature": 28,
		"humidity":    60,
		"mq2":         150,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}

	var reading sensor.Reading
	if err := json.NewDecoder(resp.Body).Decode(&reading); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if reading.GasIndex != 150 {
		t.Errorf("expected gasIndex 150 from mq2 alias, got %v", reading.GasIndex)
	}
}

func TestLatestNotFoundOnEmptyStore(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sensor-data/latest", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestStatsOnEmptyStore(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sensor-data/stats", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var stats sensor.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.Count != 0 || stats.AvgTemperature != 0 || stats.AvgHumidity != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
}

func TestRecentLimitValidation(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sensor-data/recent?limit=0", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sensor-data/recent?limit=501", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestAuthFlow(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/auth/register", map[string]string{
		"username": "ravi",
		"password": "s3cret-pass",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}

	// Duplicate registration is a client error, not a server error.
	resp = postJSON(t, app, "/api/v1/auth/register", map[string]string{
		"username": "ravi",
		"password": "other-pass",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/v1/auth/login", map[string]string{
		"username": "ravi",
		"password": "s3cret-pass",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var sessionSet bool
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			sessionSet = true
		}
	}
	if !sessionSet {
		t.Error("expected session cookie on login")
	}

	resp = postJSON(t, app, "/api/v1/auth/login", map[string]string{
		"username": "ravi",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestAdvisoryFallbackServedWithoutUpstream(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/advisory/", map[string]interface{}{
		"crop_name":   "rice",
		"temperature": 28,
		"humidity":    60,
		"rainfall":    0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var adv advisory.Advisory
	if err := json.NewDecoder(resp.Body).Decode(&adv); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if adv.Text == "" {
		t.Error("expected fallback advisory text")
	}
}

func TestCropsEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/advisory/crops", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Crops []advisory.Crop `json:"crops"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Crops) == 0 {
		t.Error("expected a non-empty crop list")
	}
}

func TestAdvisoryGatedWhenAuthRequired(t *testing.T) {
	memStore := store.NewMemoryStore()
	cache := location.NewCache(24*time.Hour, nil)
	resolver := location.NewResolver(cache, testDefault, nil)
	sensorService := sensor.NewService(memStore, resolver, downFetcher{})
	authService := auth.NewService(auth.NewMemoryAccountStore(), auth.NewMemorySessionStore(nil), time.Hour)

	app := fiber.New()
	RegisterRoutes(app, Dependencies{
		Sensor:       sensorService,
		Locations:    resolver,
		Advisory:     advisory.NewService(nil, time.Second),
		Auth:         authService,
		AuthRequired: true,
	})

	resp := postJSON(t, app, "/api/v1/advisory/chat", map[string]string{"message": "hello"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}

	// Ingestion stays open even when advisory routes are gated.
	resp = postJSON(t, app, "/api/v1/sensor-data", map[string]interface{}{
		"temperature": 28, "humidity": 60, "gasIndex": 150,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
}
