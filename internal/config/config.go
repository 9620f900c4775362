package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/i474232898/metoffice-weather/internal/metoffice"
	"github.com/i474232898/metoffice-weather/internal/weather"
)

// MinSchedulerInterval is the shortest refresh period per tracked location that the
// Met Office free tier tolerates. Each refresh costs two forecast calls.
const MinSchedulerInterval = 500 * time.Second

type AppConfig struct {
	Port   string
	LogEnv string

	MetOffice MetOfficeConfig

	HTTPTimeout time.Duration
	RateLimit   RateLimitConfig
	Breaker     BreakerConfig
	Redis       RedisConfig

	// SchedulerInterval controls how often we refresh the tracked locations. It is never
	// shorter than MinSchedulerInterval per location.
	SchedulerInterval time.Duration
	// StoreMaxAge is how long a snapshot stays servable (0 = unlimited).
	StoreMaxAge time.Duration

	// Locations to track.
	Locations []weather.Location
}

type MetOfficeConfig struct {
	// APIKey seeds the credential store when it is still empty.
	APIKey       string
	ForecastHost string
	SearchHost   string
	ProviderName string
	SearchLimit  int
}

type RateLimitConfig struct {
	RequestsPerDay int
	Burst          int
}

type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
}

type RedisConfig struct {
	Addr string
	Key  string
}

type locationConfig struct {
	Name string  `mapstructure:"name" validate:"required"`
	Lat  float64 `mapstructure:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `mapstructure:"lon" validate:"gte=-180,lte=180"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.env", "development")

	v.SetDefault("metoffice.forecast_host", metoffice.DefaultForecastHost)
	v.SetDefault("metoffice.search_host", metoffice.DefaultSearchHost)
	v.SetDefault("metoffice.provider_name", weather.DefaultProviderName)
	v.SetDefault("metoffice.search_limit", weather.DefaultSearchLimit)

	v.SetDefault("http.timeout", "10s")

	// 360 calls/day is the Met Office site-specific free plan.
	v.SetDefault("ratelimit.requests_per_day", 360)
	v.SetDefault("ratelimit.burst", 4)

	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", "0s")
	v.SetDefault("breaker.timeout", "60s")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.key", "metoffice:apikey")

	v.SetDefault("scheduler.interval", MinSchedulerInterval.String())
	v.SetDefault("store.max_age", "24h")
}

// Load reads configuration from an optional YAML file and the environment.
// An empty path looks for config.yaml in the working directory and the project root.
func Load(path string) (*AppConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("METOFFICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("metoffice.api_key", "METOFFICE_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if root, err := getProjectRoot(); err == nil {
			v.AddConfigPath(root)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &AppConfig{
		Port:   v.GetString("server.port"),
		LogEnv: v.GetString("log.env"),
		MetOffice: MetOfficeConfig{
			APIKey:       v.GetString("metoffice.api_key"),
			ForecastHost: v.GetString("metoffice.forecast_host"),
			SearchHost:   v.GetString("metoffice.search_host"),
			ProviderName: v.GetString("metoffice.provider_name"),
			SearchLimit:  v.GetInt("metoffice.search_limit"),
		},
		HTTPTimeout: v.GetDuration("http.timeout"),
		RateLimit: RateLimitConfig{
			RequestsPerDay: v.GetInt("ratelimit.requests_per_day"),
			Burst:          v.GetInt("ratelimit.burst"),
		},
		Breaker: BreakerConfig{
			MaxRequests: v.GetUint32("breaker.max_requests"),
			Interval:    v.GetDuration("breaker.interval"),
			Timeout:     v.GetDuration("breaker.timeout"),
		},
		Redis: RedisConfig{
			Addr: v.GetString("redis.addr"),
			Key:  v.GetString("redis.key"),
		},
		SchedulerInterval: v.GetDuration("scheduler.interval"),
		StoreMaxAge:       v.GetDuration("store.max_age"),
	}

	if cfg.SchedulerInterval < MinSchedulerInterval {
		return nil, fmt.Errorf("scheduler.interval must be at least %s, got %s", MinSchedulerInterval, cfg.SchedulerInterval)
	}
	if cfg.MetOffice.SearchLimit <= 0 {
		return nil, fmt.Errorf("metoffice.search_limit must be positive, got %d", cfg.MetOffice.SearchLimit)
	}

	locs, err := loadLocations(v)
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs
	cfg.SchedulerInterval = max(cfg.SchedulerInterval, MinSchedulerInterval*time.Duration(len(locs)))
	// every location fetches both granularities at the start of a cycle
	cfg.RateLimit.Burst = max(cfg.RateLimit.Burst, 2*len(locs))

	return cfg, nil
}

func loadLocations(v *viper.Viper) ([]weather.Location, error) {
	var raw []locationConfig
	if err := v.UnmarshalKey("locations", &raw); err != nil {
		return nil, fmt.Errorf("invalid locations: %w", err)
	}

	validate := validator.New()
	locs := make([]weather.Location, 0, len(raw))
	for i, l := range raw {
		if err := validate.Struct(l); err != nil {
			return nil, fmt.Errorf("invalid location #%d: %w", i, err)
		}
		locs = append(locs, weather.Location{Name: l.Name, Lat: l.Lat, Lon: l.Lon})
	}
	return locs, nil
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// NewLogger returns a development logger for "development" and a production JSON logger otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
