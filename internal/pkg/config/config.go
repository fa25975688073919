package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	PIIRedactionFields []string      `env:"PII_REDACTION_FIELDS" envDefault:"email,phone,contact_name" envSeparator:","`
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	AdminAddr          string        `env:"ADMIN_ADDR" envDefault:":9091"`
	PostgresURL        string        `env:"POSTGRES_URL,required"`
	RedisAddr          string        `env:"REDIS_ADDR" envDefault:"redis://localhost:6379/0"`
	MirrorKey          string        `env:"MIRROR_KEY" envDefault:"dealer-portal:snapshot"`
	MirrorTTL          time.Duration `env:"MIRROR_TTL" envDefault:"24h"`
	JWTSecret          string        `env:"JWT_SECRET,required"`
	RefreshInterval    time.Duration `env:"REFRESH_INTERVAL" envDefault:"1m"`
	RateLimitRPS       float64       `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"40"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"65536"`
	ExportBucket       string        `env:"EXPORT_S3_BUCKET"`
	AWSRegion          string        `env:"AWS_REGION" envDefault:"us-east-1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", cfg.RefreshInterval)
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", cfg.MaxBodyBytes)
	}

	return cfg, nil
}
