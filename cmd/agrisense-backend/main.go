package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/agrisense/agrisense-backend/internal/advisory"
	httpapi "github.com/agrisense/agrisense-backend/internal/api/http"
	"github.com/agrisense/agrisense-backend/internal/auth"
	"github.com/agrisense/agrisense-backend/internal/config"
	"github.com/agrisense/agrisense-backend/internal/location"
	locproviders "github.com/agrisense/agrisense-backend/internal/location/providers"
	"github.com/agrisense/agrisense-backend/internal/scheduler"
	"github.com/agrisense/agrisense-backend/internal/sensor"
	"github.com/agrisense/agrisense-backend/internal/store"
	"github.com/agrisense/agrisense-backend/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	// Reading and account stores: Postgres when configured, memory otherwise.
	var (
		readingStore sensor.Store
		accountStore auth.AccountStore
	)
	if cfg.DatabaseURL != "" {
		db, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		pgStore, err := store.NewPostgresStore(db)
		if err != nil {
			log.Fatalf("failed to init reading store: %v", err)
		}
		pgAccounts, err := auth.NewPostgresAccountStore(db)
		if err != nil {
			log.Fatalf("failed to init account store: %v", err)
		}
		readingStore = pgStore
		accountStore = pgAccounts
		log.Println("storage: postgres")
	} else {
		readingStore = store.NewMemoryStore()
		accountStore = auth.NewMemoryAccountStore()
		log.Println("storage: in-memory (set DATABASE_URL for durability)")
	}

	// Sessions: Redis when configured, memory otherwise.
	var sessionStore auth.SessionStore
	if cfg.RedisURL != "" {
		redisClient, err := auth.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		sessionStore = auth.NewRedisSessionStore(redisClient)
		log.Println("sessions: redis")
	} else {
		sessionStore = auth.NewMemorySessionStore(nil)
		log.Println("sessions: in-memory")
	}

	authService := auth.NewService(accountStore, sessionStore, cfg.SessionTTL)

	// Location resolution: coords hint, then client IP, then static default.
	nominatim := locproviders.NewNominatimClient(httpClient)
	var reverse location.ReverseGeocoder = nominatim
	if cfg.GeocoderAPIKey != "" {
		reverse = locproviders.NewGoogleGeocoder(cfg.GeocoderAPIKey)
		log.Println("geocoding: google")
	} else {
		log.Println("geocoding: nominatim")
	}

	locationCache := location.NewCache(cfg.LocationCacheTTL, time.Now)
	resolver := location.NewResolver(
		locationCache,
		cfg.DefaultLocation,
		[]location.Strategy{
			location.CoordsStrategy{Geocoder: reverse},
			location.IPStrategy{Locator: locproviders.NewIPAPIClient(httpClient)},
		},
		location.WithSearch(nominatim),
		location.WithTimeout(cfg.GeoTimeout),
		location.WithMaxResults(cfg.LocationmaxResults),
	)

	// Weather enrichment: real provider or simulated, same interface.
	var fetcher sensor.WeatherFetcher
	if cfg.WeatherProvider == "simulated" {
		fetcher = weather.NewSimulatedFetcher(time.Now().UnixNano())
	} else {
		fetcher = weather.NewOpenMeteoFetcher(httpClient)
	}
	log.Printf("weather provider: %s", fetcher.Name())

	// Generative advisory service; strictly optional.
	var advisoryClient *advisory.Client
	if cfg.AdvisoryAPIURL != "" {
		advisoryClient = advisory.NewClient(httpClient, cfg.AdvisoryAPIURL)
		log.Printf("advisory service: %s", cfg.AdvisoryAPIURL)
	} else {
		log.Println("advisory service: not configured, serving fallback content")
	}
	advisoryService := advisory.NewService(advisoryClient, cfg.AdvisoryTimeout)

	// Ingestion pipeline.
	opts := []sensor.Option{
		sensor.WithTimeouts(cfg.WeatherTimeout, cfg.AdvisoryTimeout),
		sensor.WithLanguage(cfg.Language),
	}
	if advisoryClient != nil {
		opts = append(opts, sensor.WithSummarizer(advisoryClient))
	}
	sensorService := sensor.NewService(readingStore, resolver, fetcher, opts...)

	// Optional device simulator.
	if cfg.DeviceSimulator {
		sim := scheduler.New(sensorService, cfg.DeviceSimulatorInterval)
		if err := sim.Start(); err != nil {
			log.Fatalf("failed to start device simulator: %v", err)
		}
		defer sim.Stop()
		log.Printf("device simulator: every %s", cfg.DeviceSimulatorInterval)
	}

	app := fiber.New(fiber.Config{
		AppName:               "agrisense-backend",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "agrisense-backend",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Dependencies{
		Sensor:       sensorService,
		Locations:    resolver,
		Advisory:     advisoryService,
		Auth:         authService,
		AuthRequired: cfg.AuthRequired,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
