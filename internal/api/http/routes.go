package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/agrisense/agrisense-backend/internal/advisory"
	"github.com/agrisense/agrisense-backend/internal/auth"
	"github.com/agrisense/agrisense-backend/internal/location"
	"github.com/agrisense/agrisense-backend/internal/sensor"
	"github.com/agrisense/agrisense-backend/internal/store"
)

var validate = validator.New()

const sessionCookie = "agrisense_session"

// Dependencies bundles the services the HTTP layer exposes.
type Dependencies struct {
	Sensor    *sensor.Service
	Locations *location.Resolver
	Advisory  *advisory.Service
	Auth      *auth.Service

	// AuthRequired gates the advisory routes behind a session. Ingestion
	// and read endpoints are always open: the device has no session.
	AuthRequired bool
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/", listEndpoints)

	v1 := app.Group("/api/v1")

	v1.Post("/sensor-data", handleIngest(deps.Sensor))
	v1.Get("/sensor-data/latest", handleLatest(deps.Sensor))
	v1.Get("/sensor-data/recent", handleRecent(deps.Sensor))
	v1.Get("/sensor-data/stats", handleStats(deps.Sensor))

	v1.Get("/location/search", handleLocationSearch(deps.Locations))

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", handleRegister(deps.Auth))
	authGroup.Post("/login", handleLogin(deps.Auth))
	authGroup.Post("/logout", handleLogout(deps.Auth))

	adv := v1.Group("/advisory")
	if deps.AuthRequired {
		adv.Use(requireSession(deps.Auth))
	}
	adv.Post("/", handleAdvisory(deps.Advisory))
	adv.Post("/crop-care", handleCropCare(deps.Advisory))
	adv.Post("/videos", handleVideos(deps.Advisory))
	adv.Get("/crops", handleCrops(deps.Advisory))
	adv.Get("/crops/:crop/stages", handleStages(deps.Advisory))
	adv.Post("/chat", handleChat(deps.Advisory))
}

func listEndpoints(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "agrisense-backend",
		"endpoints": []string{
			"GET /health",
			"POST /api/v1/sensor-data",
			"GET /api/v1/sensor-data/latest",
			"GET /api/v1/sensor-data/recent",
			"GET /api/v1/sensor-data/stats",
			"GET /api/v1/location/search",
			"POST /api/v1/auth/register",
			"POST /api/v1/auth/login",
			"POST /api/v1/auth/logout",
			"POST /api/v1/advisory",
			"POST /api/v1/advisory/crop-care",
			"POST /api/v1/advisory/videos",
			"GET /api/v1/advisory/crops",
			"GET /api/v1/advisory/crops/:crop/stages",
			"POST /api/v1/advisory/chat",
		},
	})
}

// ingestRequest is the device payload. Required fields are pointers so a
// missing field is distinguishable from a genuine zero.
type ingestRequest struct {
	Temperature *float64 `json:"temperature" validate:"required"`
	Humidity    *float64 `json:"humidity" validate:"required"`
	GasIndex    *float64 `json:"gasIndex" validate:"required"`
	MQ2         *float64 `json:"mq2"` // device firmware alias for gasIndex
	Rainfall    *float64 `json:"rainfall"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

func handleIngest(svc *sensor.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ingestRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		if req.GasIndex == nil {
			req.GasIndex = req.MQ2
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reading, err := svc.Ingest(c.Context(), sensor.RawReading{
			Temperature: *req.Temperature,
			Humidity:    *req.Humidity,
			GasIndex:    *req.GasIndex,
			Rainfall:    req.Rainfall,
			Lat:         req.Lat,
			Lon:         req.Lon,
			ClientIP:    c.IP(),
		})
		if err != nil {
			if errors.Is(err, sensor.ErrValidation) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store sensor reading")
		}

		return c.Status(fiber.StatusCreated).JSON(reading)
	}
}

func handleLatest(svc *sensor.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reading, err := svc.Latest(c.Context())
		if err != nil {
			if errors.Is(err, store.ErrNoReadings) {
				return fiber.NewError(fiber.StatusNotFound, "no sensor readings yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch latest reading")
		}
		return c.JSON(reading)
	}
}

func handleRecent(svc *sensor.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 500 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 500")
		}

		readings, err := svc.Recent(c.Context(), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch readings")
		}
		if readings == nil {
			readings = []sensor.Reading{}
		}
		return c.JSON(fiber.Map{
			"count":    len(readings),
			"readings": readings,
		})
	}
}

func handleStats(svc *sensor.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute stats")
		}
		return c.JSON(stats)
	}
}

func handleLocationSearch(resolver *location.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}
		limit := c.QueryInt("limit", 0)

		results, err := resolver.SearchByName(c.Context(), query, limit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "location search failed")
		}
		if results == nil {
			results = []sensor.Location{}
		}
		return c.JSON(fiber.Map{
			"query":   query,
			"results": results,
		})
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func handleRegister(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := svc.Register(c.Context(), req.Username, req.Email, req.Password); err != nil {
			if errors.Is(err, auth.ErrUsernameTaken) {
				return fiber.NewError(fiber.StatusConflict, "username already taken")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to register")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"username": req.Username})
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func handleLogin(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		sessionID, err := svc.Login(c.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to log in")
		}

		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    sessionID,
			HTTPOnly: true,
			MaxAge:   int(svc.SessionTTL().Seconds()),
		})
		return c.JSON(fiber.Map{"username": req.Username})
	}
}

func handleLogout(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Logout(c.Context(), c.Cookies(sessionCookie)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to log out")
		}
		c.ClearCookie(sessionCookie)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func requireSession(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, err := svc.Verify(c.Context(), c.Cookies(sessionCookie))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "login required")
		}
		c.Locals("username", username)
		return c.Next()
	}
}

type advisoryRequest struct {
	CropName    string   `json:"crop_name" validate:"required"`
	Temperature *float64 `json:"temperature" validate:"required"`
	Humidity    *float64 `json:"humidity" validate:"required"`
	Rainfall    *float64 `json:"rainfall" validate:"required"`
	GasIndex    float64  `json:"gasIndex"`
	GrowthStage string   `json:"growth_stage"`
	Language    string   `json:"language"`
}

func (r advisoryRequest) cropCare() advisory.CropCareRequest {
	return advisory.CropCareRequest{
		CropName:    r.CropName,
		Temperature: *r.Temperature,
		Humidity:    *r.Humidity,
		Rainfall:    *r.Rainfall,
		GasIndex:    r.GasIndex,
		GrowthStage: r.GrowthStage,
		Language:    r.Language,
	}
}

func bindAdvisoryRequest(c *fiber.Ctx) (advisoryRequest, error) {
	var req advisoryRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := validate.Struct(req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return req, nil
}

func handleAdvisory(svc *advisory.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := bindAdvisoryRequest(c)
		if err != nil {
			return err
		}

		adv := svc.GenerateAdvisory(c.Context(), advisory.AdvisoryRequest{
			CropName:       req.CropName,
			Temperature:    *req.Temperature,
			Humidity:       *req.Humidity,
			Rainfall:       *req.Rainfall,
			PollutionLevel: sensor.AirQualityTier(req.GasIndex),
			Language:       req.Language,
		})
		return c.JSON(adv)
	}
}

func handleCropCare(svc *advisory.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := bindAdvisoryRequest(c)
		if err != nil {
			return err
		}

		advice := svc.CropCare(c.Context(), req.cropCare())
		return c.JSON(fiber.Map{
			"crop":        req.CropName,
			"growthStage": req.GrowthStage,
			"advice":      advice,
		})
	}
}

func handleVideos(svc *advisory.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := bindAdvisoryRequest(c)
		if err != nil {
			return err
		}

		videos := svc.Videos(c.Context(), req.cropCare())
		return c.JSON(fiber.Map{
			"crop":   req.CropName,
			"videos": videos,
		})
	}
}

func handleCrops(svc *advisory.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"crops": svc.Crops()})
	}
}

func handleStages(svc *advisory.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		crop := c.Params("crop")
		return c.JSON(fiber.Map{
			"crop":   crop,
			"stages": svc.Stages(crop),
		})
	}
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

func handleChat(svc *advisory.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"reply": svc.Chat(c.Context(), req.Message)})
	}
}
