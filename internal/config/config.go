package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Port         string
	DataPath     string
	MappingPath  string
	DBDSN        string
	DevicesTable string
	CacheTTL     time.Duration
	LogLevel     string
	Environment  string

	EnableMetrics bool
	EnableSwagger bool

	RateLimitPerSec float64
	RateLimitBurst  int

	AuthEnabled bool
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration
}

func Load() *Config {
	config := &Config{
		Port:         getEnv("PORT", "8080"),
		DataPath:     getEnv("DATA_PATH", "data/DadosPlanilha.csv"),
		MappingPath:  os.Getenv("MAPPING_PATH"),
		DBDSN:        os.Getenv("DB_DSN"),
		DevicesTable: getEnv("DEVICES_TABLE", "devices"),
		CacheTTL:     30 * time.Second,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Environment:  getEnv("ENVIRONMENT", "development"),

		EnableMetrics: os.Getenv("ENABLE_METRICS") == "true",
		EnableSwagger: os.Getenv("ENABLE_SWAGGER") == "true",

		RateLimitPerSec: 10,
		RateLimitBurst:  20,

		AuthEnabled: getEnv("AUTH_ENABLED", "true") == "true",
		JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
		JWTIssuer:   getEnv("JWT_ISS", "inventory-dashboard"),
		JWTAudience: getEnv("JWT_AUD", "inventory-dashboard"),
		JWTExpiry:   24 * time.Hour, // Default to 24 hours
	}

	// Durations and numbers keep their defaults when unparseable
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			config.CacheTTL = ttl
		}
	}
	if v := os.Getenv("JWT_EXPIRY"); v != "" {
		if expiry, err := time.ParseDuration(v); err == nil {
			config.JWTExpiry = expiry
		}
	}
	if v := os.Getenv("RATE_LIMIT_PER_SEC"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			config.RateLimitPerSec = rps
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if burst, err := strconv.Atoi(v); err == nil {
			config.RateLimitBurst = burst
		}
	}

	return config
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if c.DBDSN == "" && c.DataPath == "" {
		return errors.New("either DB_DSN or DATA_PATH must be set")
	}
	if c.CacheTTL < 0 {
		return errors.New("CACHE_TTL cannot be negative")
	}
	if c.RateLimitPerSec <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive, got %v/s burst %d", c.RateLimitPerSec, c.RateLimitBurst)
	}
	if !c.AuthEnabled {
		return nil
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET cannot be empty")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters long")
	}
	if c.Environment == "production" && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be changed in production")
	}
	if c.JWTIssuer == "" {
		return errors.New("JWT_ISS cannot be empty")
	}
	if c.JWTAudience == "" {
		return errors.New("JWT_AUD cannot be empty")
	}
	if c.JWTExpiry < time.Minute {
		return errors.New("JWT_EXPIRY must be at least one minute")
	}
	if c.JWTExpiry > 7*24*time.Hour {
		return errors.New("JWT_EXPIRY cannot exceed 7 days")
	}
	return nil
}

// LoadAndValidate loads the configuration from the environment and validates it
func LoadAndValidate() (*Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
