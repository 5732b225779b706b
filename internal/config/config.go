// Package config loads the service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type OpenLibrary struct {
	URL        string        `env:"OPENLIBRARY_URL" env-required:"true"`
	UserAgent  string        `env:"OPENLIBRARY_USER_AGENT" env-default:"bookcatalog/1.0"`
	RPS        float64       `env:"OPENLIBRARY_RPS" env-default:"5"`
	MaxRetries int           `env:"OPENLIBRARY_MAX_RETRIES" env-default:"0"`
	Timeout    time.Duration `env:"OPENLIBRARY_TIMEOUT" env-default:"15s"`
}

type Config struct {
	Addr            string        `env:"APP_ADDR" env-default:":8080"`
	Store           string        `env:"STORE" env-default:"postgres"`
	DBDSN           string        `env:"DB_DSN"`
	DBTimeout       time.Duration `env:"DB_TIMEOUT" env-default:"3s"`
	JWTSecret       string        `env:"JWT_SECRET" env-required:"true"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" env-default:"24h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	OpenLibrary OpenLibrary

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	EnableHSTS         bool     `env:"ENABLE_HSTS" env-default:"false"`
	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS" env-default:"20"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" env-default:"40"`
	MaxBodyBytes       int64    `env:"MAX_BODY_BYTES" env-default:"1048576"`
	LogLevel           string   `env:"LOG_LEVEL" env-default:"info"`

	// IngestSecret enables POST /internal/jobs/ingest when set.
	IngestSecret    string `env:"INGEST_SECRET"`
	IngestBatchSize int    `env:"INGEST_BATCH_SIZE" env-default:"50"`
}

// LoadEnvFiles reads .env and .env.local from the working directory. Values
// already present in the environment win.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads the env files and binds the environment into a Config.
func Load() (Config, error) {
	LoadEnvFiles()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.OpenLibrary.URL == "" {
		return errors.New("OPENLIBRARY_URL is required")
	}
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DBDSN == "" {
			return errors.New("DB_DSN is required when STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE %q, use %s or %s", c.Store, StorePostgres, StoreMemory)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be positive")
	}
	return nil
}

// SlogLevel parses LogLevel, falling back to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
