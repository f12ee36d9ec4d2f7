package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Frontend  FrontendConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Universe  UniverseConfig
	Preview   PreviewConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	URL          string        `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	Environment  string        `env:"ENVIRONMENT" envDefault:"development"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

type DatabaseConfig struct {
	Enabled         bool          `env:"DB_ENABLED" envDefault:"false"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD" envDefault:"postgres"`
	Name            string        `env:"DB_NAME" envDefault:"planetinfo"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	MigrationsPath  string        `env:"DB_MIGRATIONS_PATH" envDefault:"migrations"`
}

type RedisConfig struct {
	Enabled   bool          `env:"REDIS_ENABLED" envDefault:"false"`
	URL       string        `env:"REDIS_URL"`
	Host      string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port      string        `env:"REDIS_PORT" envDefault:"6379"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB" envDefault:"0"`
	PlanetTTL time.Duration `env:"REDIS_PLANET_TTL" envDefault:"24h"`
}

type AuthConfig struct {
	// JWTSecret signs admin tokens. Admin routes are disabled when empty.
	JWTSecret       string        `env:"JWT_SECRET"`
	TokenExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
}

type FrontendConfig struct {
	URL       string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	CORSDebug bool   `env:"CORS_DEBUG" envDefault:"false"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"debug"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
	// JSONFormat is derived from Format and the environment.
	JSONFormat bool `env:"-"`
}

type RateLimitConfig struct {
	Enabled           bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RequestsPerSecond float64 `env:"RATE_LIMIT_REQUESTS_PER_SECOND" envDefault:"10"`
	BurstSize         int     `env:"RATE_LIMIT_BURST_SIZE" envDefault:"20"`
}

type UniverseConfig struct {
	// Workers sizes the index build pool; 0 uses GOMAXPROCS.
	Workers       int  `env:"UNIVERSE_WORKERS" envDefault:"0"`
	RetryAttempts int  `env:"UNIVERSE_RETRY_ATTEMPTS" envDefault:"3"`
	Preload       bool `env:"UNIVERSE_PRELOAD" envDefault:"true"`
	Persist       bool `env:"UNIVERSE_PERSIST" envDefault:"false"`
	CacheEntries  int  `env:"UNIVERSE_CACHE_ENTRIES" envDefault:"100000"`
}

type PreviewConfig struct {
	AssetDir string `env:"PREVIEW_ASSET_DIR" envDefault:"assets/textures"`
	TilePx   int    `env:"PREVIEW_TILE_PX" envDefault:"4"`
	// MaxPixels caps the side of a composed preview.
	MaxPixels int `env:"PREVIEW_MAX_PIXELS" envDefault:"2048"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"planetinfo-server"`
}

var GlobalConfig *Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config, err := Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	GlobalConfig = config
	return nil
}

// Load parses and validates the configuration from the environment.
func Load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	config.Logging.JSONFormat = config.Logging.Format == "json" || config.IsProduction()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.Enabled && c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.Enabled && c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Universe.Persist && !c.Database.Enabled {
		return fmt.Errorf("UNIVERSE_PERSIST requires DB_ENABLED")
	}

	if c.Universe.Workers < 0 {
		return fmt.Errorf("UNIVERSE_WORKERS must not be negative")
	}

	if c.Preview.TilePx <= 0 || c.Preview.MaxPixels < c.Preview.TilePx {
		return fmt.Errorf("PREVIEW_TILE_PX must be positive and at most PREVIEW_MAX_PIXELS")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// AdminEnabled reports whether admin tokens can be verified.
func (c *Config) AdminEnabled() bool {
	return c.Auth.JWTSecret != ""
}

// ConnectionString is the lib/pq DSN for the configured database.
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}
