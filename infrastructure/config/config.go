package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Postgres configuration
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDatabase string
	PostgresSSLMode  string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration

	// Redis configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Cache configuration
	CacheKeyPrefix string
	IdentityTTL    time.Duration
	DeliveryTTL    time.Duration
	TermsTTL       time.Duration
	AddressTTL     time.Duration

	// Enrichment configuration
	EnrichmentTimeout time.Duration

	// Terms of service
	LatestTermsVersion string

	// Events
	EventStream string

	// Logging
	LogLevel string
}

// LoadConfig loads configuration from environment variables. A local .env file
// is applied first when present; real environment variables win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:     getEnv("POSTGRES_USER", "profile"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDatabase: getEnv("POSTGRES_DB", "profile"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxOpenConns:     getEnvInt("POSTGRES_MAX_OPEN_CONNS", 25),
		MaxIdleConns:     getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:  getEnvDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CacheKeyPrefix: getEnv("CACHE_KEY_PREFIX", "profile:"),
		IdentityTTL:    getEnvDuration("CACHE_IDENTITY_TTL", 5*time.Minute),
		DeliveryTTL:    getEnvDuration("CACHE_DELIVERY_TTL", 1*time.Minute),
		TermsTTL:       getEnvDuration("CACHE_TERMS_TTL", 1*time.Hour),
		AddressTTL:     getEnvDuration("CACHE_ADDRESS_TTL", 10*time.Minute),

		EnrichmentTimeout: getEnvDuration("ENRICHMENT_TIMEOUT", 2*time.Second),

		LatestTermsVersion: getEnv("LATEST_TERMS_VERSION", ""),
		EventStream:        getEnv("EVENT_STREAM", "profile-events"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.PostgresPassword == "" {
			return fmt.Errorf("POSTGRES_PASSWORD is required in production")
		}
		if c.LatestTermsVersion == "" {
			return fmt.Errorf("LATEST_TERMS_VERSION is required in production")
		}
		if c.PostgresSSLMode == "disable" {
			return fmt.Errorf("POSTGRES_SSLMODE must not be disable in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
