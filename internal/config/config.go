package config

import (
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/services"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig            `mapstructure:"server"`
	Log        LogConfig               `mapstructure:"log"`
	ORS        ORSConfig               `mapstructure:"ors"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Cache      CacheConfig             `mapstructure:"cache"`
	Redis      RedisConfig             `mapstructure:"redis"`
	NATS       NATSConfig              `mapstructure:"nats"`
	Economics  services.EconomicModel  `mapstructure:"economics"`
	Simulation SimulationConfig        `mapstructure:"simulation"`
	Fallback   []domain.RouteCandidate `mapstructure:"fallback"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ORSConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Profile      string        `mapstructure:"profile"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Alternatives int           `mapstructure:"alternatives"`
	Country      string        `mapstructure:"country"`
}

// DatabaseConfig points at Postgres; an empty URL disables persistence.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// CacheConfig applies to whichever route cache backend is active.
type CacheConfig struct {
	RouteTTL time.Duration `mapstructure:"route_ttl"`
}

// RedisConfig enables the Redis route cache when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NATSConfig enables event publishing when URL is set.
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type SimulationConfig struct {
	StepDegrees        float64       `mapstructure:"step_degrees"`
	ArrivalThresholdKm float64       `mapstructure:"arrival_threshold_km"`
	StepInterval       time.Duration `mapstructure:"step_interval"`
	MaxSteps           int           `mapstructure:"max_steps"`
}

// Simulator builds a MovementSimulator from the section, pacing with
// StepInterval when it is positive.
func (s SimulationConfig) Simulator() services.MovementSimulator {
	sim := services.MovementSimulator{
		StepDegrees:        s.StepDegrees,
		ArrivalThresholdKm: s.ArrivalThresholdKm,
		MaxSteps:           s.MaxSteps,
	}
	if s.StepInterval > 0 {
		sim.Pacer = services.IntervalPacer{Interval: s.StepInterval}
	}
	return sim
}

// legacyEnv maps un-prefixed variable names onto config keys.
var legacyEnv = map[string]string{
	"ors.api_key":  "ORS_API_KEY",
	"database.url": "DATABASE_URL",
	"server.port":  "PORT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("ors.api_key", "")
	v.SetDefault("ors.country", "")
	v.SetDefault("ors.base_url", "https://api.openrouteservice.org")
	v.SetDefault("ors.profile", "driving-car")
	v.SetDefault("ors.timeout", 10*time.Second)
	v.SetDefault("ors.alternatives", 3)
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.route_ttl", 24*time.Hour)
	v.SetDefault("nats.url", "")

	m := services.DefaultEconomicModel()
	v.SetDefault("economics.fuel_price_per_litre", m.FuelPricePerLitre)
	v.SetDefault("economics.meters_per_litre", m.MetersPerLitre)
	v.SetDefault("economics.base_fare", m.BaseFare)
	v.SetDefault("economics.price_per_km", m.PricePerKm)
	v.SetDefault("economics.price_per_minute", m.PricePerMinute)
	v.SetDefault("economics.fuel_weight", m.FuelWeight)
	v.SetDefault("economics.time_weight", m.TimeWeight)
	v.SetDefault("economics.revenue_weight", m.RevenueWeight)

	v.SetDefault("simulation.step_degrees", services.DefaultStepDegrees)
	v.SetDefault("simulation.arrival_threshold_km", services.DefaultArrivalThresholdKm)
	v.SetDefault("simulation.step_interval", time.Second)
	v.SetDefault("simulation.max_steps", 0)

	fallback := make([]map[string]any, 0, 2)
	for _, r := range services.DefaultFallbackRoutes() {
		fallback = append(fallback, map[string]any{
			"distance_meters":  r.DistanceMeters,
			"duration_seconds": r.DurationSeconds,
		})
	}
	v.SetDefault("fallback", fallback)
}

// Load reads configuration from defaults, an optional config.yaml in . or
// ./configs, and environment variables (DISPATCH_SERVER_PORT -> server.port).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("DISPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		// The prefixed variable wins over the legacy name.
		if _, prefixed := os.LookupEnv("DISPATCH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); prefixed {
			continue
		}
		if val, ok := os.LookupEnv(env); ok {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration values are present and sane. The ORS
// key is not required here; commands that call ORS check it themselves.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server timeouts must be positive")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or console, got %q", c.Log.Format))
	}
	if c.ORS.Alternatives < 1 || c.ORS.Alternatives > 3 {
		errs = append(errs, fmt.Sprintf("ors.alternatives must be 1-3, got %d", c.ORS.Alternatives))
	}
	if c.Cache.RouteTTL < 0 {
		errs = append(errs, "cache.route_ttl must be non-negative")
	}
	if err := c.Economics.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Simulation.StepDegrees == 0 {
		errs = append(errs, "simulation.step_degrees must be non-zero")
	}
	if c.Simulation.ArrivalThresholdKm < 0 {
		errs = append(errs, "simulation.arrival_threshold_km must be non-negative")
	}
	if c.Simulation.MaxSteps < 0 {
		errs = append(errs, "simulation.max_steps must be non-negative")
	}
	for i, r := range c.Fallback {
		if r.DistanceMeters < 0 || r.DurationSeconds < 0 {
			errs = append(errs, fmt.Sprintf("fallback[%d] must have non-negative distance and duration", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
