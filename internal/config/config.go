package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultDSN       = "host=localhost user=postgres password=postgres dbname=foodloop port=5432 sslmode=disable"
	defaultOrigins   = "http://localhost:3000"
	devMemorySecret  = "foodloop-memory-mode-development-secret"
	minJWTSecretSize = 32
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	StoreDriver string
	JWTSecret   string
	CORSOrigins string
	Env         string
	LogLevel    string
	SeedDemo    bool
}

func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads the environment, after merging an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be read")
	}

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", defaultOrigins),
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SeedDemo:    getEnvBool("SEED_DEMO", false),
	}

	if cfg.StoreDriver != DriverPostgres && cfg.StoreDriver != DriverMemory {
		return nil, errors.New("STORE_DRIVER must be postgres or memory")
	}

	if cfg.JWTSecret == "" && cfg.StoreDriver == DriverMemory && !cfg.Production() {
		cfg.JWTSecret = devMemorySecret
		log.Warn().Msg("JWT_SECRET not set, using the memory mode development secret")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minJWTSecretSize {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}

	if cfg.StoreDriver == DriverPostgres && cfg.DatabaseDSN == defaultDSN {
		log.Warn().Msg("DATABASE_DSN is the local default, set your own Postgres DSN for production")
	}
	if cfg.CORSOrigins == defaultOrigins {
		log.Warn().Msg("CORS_ALLOWED_ORIGINS is the local default, set your own domain for production")
	}

	return cfg, nil
}

// Origins splits CORS_ALLOWED_ORIGINS and trims each entry.
func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
