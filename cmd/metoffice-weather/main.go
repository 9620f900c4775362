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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/metoffice-weather/internal/api/http"
	"github.com/i474232898/metoffice-weather/internal/config"
	"github.com/i474232898/metoffice-weather/internal/metoffice"
	"github.com/i474232898/metoffice-weather/internal/scheduler"
	"github.com/i474232898/metoffice-weather/internal/store"
	"github.com/i474232898/metoffice-weather/internal/transport"
	"github.com/i474232898/metoffice-weather/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := config.NewLogger(cfg.LogEnv)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Credential store; a configured key only seeds an empty store.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer rdb.Close()
	keys := store.NewRedisKeyStore(rdb, cfg.Redis.Key)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 5*time.Second)
	if seeded, err := keys.SeedAPIKey(seedCtx, cfg.MetOffice.APIKey); err != nil {
		zl.Warn("could not seed API key", zap.Error(err))
	} else if seeded {
		zl.Info("seeded API key from configuration")
	}
	cancelSeed()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// Forecast calls count against the daily quota; location search does not.
	forecastTr := transport.NewHTTP(transport.Config{
		Client:             httpClient,
		RequestsPerDay:     cfg.RateLimit.RequestsPerDay,
		Burst:              cfg.RateLimit.Burst,
		BreakerName:        "metoffice-forecast",
		BreakerMaxRequests: cfg.Breaker.MaxRequests,
		BreakerInterval:    cfg.Breaker.Interval,
		BreakerTimeout:     cfg.Breaker.Timeout,
	})
	searchTr := transport.NewHTTP(transport.Config{
		Client:             httpClient,
		BreakerName:        "metoffice-search",
		BreakerMaxRequests: cfg.Breaker.MaxRequests,
		BreakerInterval:    cfg.Breaker.Interval,
		BreakerTimeout:     cfg.Breaker.Timeout,
	})

	client := metoffice.NewClient(forecastTr, keys, zl,
		metoffice.WithHosts(cfg.MetOffice.ForecastHost, cfg.MetOffice.SearchHost),
		metoffice.WithSearchTransport(searchTr))

	service := weather.NewService(client, keys, zl,
		weather.WithProviderName(cfg.MetOffice.ProviderName),
		weather.WithSearchLimit(cfg.MetOffice.SearchLimit),
		weather.WithSnapshotStore(store.NewMemoryStore(cfg.StoreMaxAge)),
	)

	// Scheduler that periodically refreshes tracked locations.
	sched := scheduler.New(cfg.Locations, cfg.SchedulerInterval, service, zl)
	if err := sched.Start(); err != nil {
		zl.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "metoffice-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(httpapi.RequestTimeout(cfg.HTTPTimeout))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "metoffice-weather",
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		zl.Info("listening", zap.String("port", cfg.Port), zap.Duration("refresh_interval", cfg.SchedulerInterval))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
}
