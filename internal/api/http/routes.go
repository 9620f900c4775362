package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/metoffice-weather/internal/metoffice"
	"github.com/i474232898/metoffice-weather/internal/store"
	"github.com/i474232898/metoffice-weather/internal/transport"
	"github.com/i474232898/metoffice-weather/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		req, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		forecasts, ok, err := service.GetLocationWeatherData(c.UserContext(), req.toLocation())
		if err != nil {
			return toFiberError(err)
		}
		if !ok {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(forecasts)
	})

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		name := c.Query("name")
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name query parameter is required")
		}

		snapshot, err := service.GetLatest(weather.Location{Name: name})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, weather.ErrNoSnapshotStore) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}
		return c.JSON(snapshot)
	})

	v1.Get("/locations", func(c *fiber.Ctx) error {
		req, err := parseLocationsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		results, err := service.FindLocations(c.UserContext(), req.Query, req.Limit)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(results)
	})

	v1.Get("/state", func(c *fiber.Ctx) error {
		state, err := service.State(c.UserContext())
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{"state": state})
	})

	v1.Put("/apikey", func(c *fiber.Ctx) error {
		var req apiKeyRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		accepted, err := service.SaveAPIKey(c.UserContext(), req.APIKey)
		if err != nil {
			return toFiberError(err)
		}
		if !accepted {
			return fiber.NewError(fiber.StatusBadRequest, "API key rejected by Met Office")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// RequestTimeout bounds the user context of every request, so upstream calls waiting on
// the outbound rate limiter fail fast instead of holding the connection.
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// toFiberError maps service errors onto HTTP statuses.
func toFiberError(err error) error {
	var apiErr *metoffice.APIError
	switch {
	case errors.Is(err, metoffice.ErrNoAPIKey):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, metoffice.ErrUnauthorized):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.As(err, &apiErr):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, transport.ErrQuotaExhausted):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// weatherQuery holds query parameters for a forecast request.
type weatherQuery struct {
	Name string
	Lat  *float64 `validate:"required,gte=-90,lte=90"`
	Lon  *float64 `validate:"required,gte=-180,lte=180"`
}

func (q weatherQuery) toLocation() weather.Location {
	return weather.Location{Name: q.Name, Lat: *q.Lat, Lon: *q.Lon}
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	var q weatherQuery
	q.Name = c.Query("name")

	var err error
	if q.Lat, err = parseOptionalFloat(c.Query("lat")); err != nil {
		return q, errors.New("lat must be a number")
	}
	if q.Lon, err = parseOptionalFloat(c.Query("lon")); err != nil {
		return q, errors.New("lon must be a number")
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// locationsQuery holds query parameters for the location search endpoint.
type locationsQuery struct {
	Query string `validate:"required"`
	Limit int    `validate:"gte=0,lte=50"`
}

func parseLocationsQuery(c *fiber.Ctx) (locationsQuery, error) {
	var q locationsQuery
	q.Query = c.Query("q")

	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return q, errors.New("limit must be an integer")
		}
		q.Limit = n
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey" validate:"required"`
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
