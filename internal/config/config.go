// Package config loads runtime settings from the environment.
//
// A dotenv file is loaded first (ENV_FILE, default ".env"). Variables already
// present in the process environment win over the file, so a deployment can
// override anything the file says. A missing file is fine.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// Storage drivers accepted in DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// MinSecretLength is the shortest AUTH_JWT_SECRET we accept.
const MinSecretLength = 16

// Config is read once at startup and treated as immutable.
type Config struct {
	// Server
	Port      int
	StaticDir string

	// Storage
	DBDriver    string
	DBPath      string
	DatabaseURL string

	// Auth
	JWTSecret   string
	Issuer      string
	Audience    string
	UserInfoURL string

	// CORS
	CORSAllowedOrigins []string

	// Startup
	SeedDemoUsers bool

	// Logging
	LogLevel  slog.Level
	LogFormat string
}

// Load reads the dotenv file and the environment and validates the result.
// All problems are reported together.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: loading %s: %w", envFile, err)
	}

	var errs []error

	cfg := &Config{
		StaticDir:   os.Getenv("STATIC_DIR"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:      getEnv("DB_PATH", "data/kudos.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		Issuer:      os.Getenv("AUTH_ISSUER"),
		Audience:    os.Getenv("AUTH_AUDIENCE"),
		UserInfoURL: os.Getenv("AUTH_USERINFO_URL"),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a number between 1 and 65535, got %q", os.Getenv("PORT")))
	}
	cfg.Port = port

	switch cfg.DBDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite, postgres or memory, got %q", cfg.DBDriver))
	}

	if len(cfg.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("AUTH_JWT_SECRET must be at least %d characters", MinSecretLength))
	}

	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	seed, err := strconv.ParseBool(getEnv("SEED_DEMO_USERS", "true"))
	if err != nil {
		errs = append(errs, fmt.Errorf("SEED_DEMO_USERS must be a boolean, got %q", os.Getenv("SEED_DEMO_USERS")))
	}
	cfg.SeedDemoUsers = seed

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// CORSOptions returns the rs/cors settings for the SPA client.
// Credentials are allowed so the browser sends the session cookie.
func (c *Config) CORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:   c.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// getEnv returns the variable, or fallback when it is unset or empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
