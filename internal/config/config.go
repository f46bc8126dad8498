// Package config loads application configuration from the environment.
// A .env file in the working directory is read first if present, so
// local development matches the deployed env-var setup.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// defaultSecret is only suitable for local development. Load warns
// whenever it is in effect.
const defaultSecret = "potluck-dev-secret-change-in-production"

// Config holds application configuration. It is passed explicitly into
// the components that need it; there are no package-level globals.
type Config struct {
	Port          string
	DBPath        string
	JWTSecret     string
	TokenDuration time.Duration
	UploadDir     string
	UploadMaxSize int64
	AllowedOrigin string
}

// Load reads configuration from environment variables with sensible
// defaults, after loading .env if one exists.
func Load() *Config {
	// Missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./data/potluck.db"),
		JWTSecret:     getEnv("JWT_SECRET", defaultSecret),
		TokenDuration: getDuration("TOKEN_DURATION", 7*24*time.Hour),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		UploadMaxSize: getInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
	}

	if cfg.JWTSecret == defaultSecret {
		slog.Warn("JWT_SECRET not set, using development default")
	}

	return cfg
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getInt64 reads an integer environment variable or returns a default value.
func getInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		slog.Warn("Invalid integer, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

// getDuration reads a duration environment variable (e.g. "168h") or
// returns a default value.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}
