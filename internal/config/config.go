package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	JWTDurationMinutes int

	RateLimitMessage time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		JWTIssuer:   getEnv("JWT_ISSUER", "todopro"),
		JWTAudience: getEnv("JWT_AUDIENCE", "todopro-web"),
	}

	minutes, err := strconv.Atoi(getEnv("JWT_DURATION_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_DURATION_MINUTES: %w", err)
	}
	cfg.JWTDurationMinutes = minutes

	cfg.RateLimitMessage, err = time.ParseDuration(getEnv("RATE_LIMIT_MESSAGE", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MESSAGE: %w", err)
	}

	return cfg, nil
}

// TokenTTL returns the configured credential lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTDurationMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
