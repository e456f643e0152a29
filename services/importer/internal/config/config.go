package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultRequestTimeout = 30 * time.Second

// Config holds runtime configuration for the importer.
type Config struct {
	DatabaseURL    string
	RequestTimeout time.Duration
	DryRun         bool
}

// LogSettings returns LOG_LEVEL and LOG_FORMAT, defaulting to info/json.
func LogSettings() (level, format string) {
	_ = godotenv.Load(".env")

	level = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format = strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return level, format
}

// Load reads configuration from environment variables (optionally .env).
// DATABASE_URL may be empty only for dry runs.
func Load(dryRun bool) (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{DryRun: dryRun}

	if v := strings.TrimSpace(os.Getenv("DRY_RUN")); v == "1" || strings.EqualFold(v, "true") {
		cfg.DryRun = true
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" && !cfg.DryRun {
		return cfg, errors.New("DATABASE_URL is required")
	}

	cfg.RequestTimeout = defaultRequestTimeout
	if v := strings.TrimSpace(os.Getenv("IMPORTER_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid IMPORTER_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	return cfg, nil
}
