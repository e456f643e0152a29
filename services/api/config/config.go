package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
)

// Config holds environment-driven settings for the REST API.
type Config struct {
	StoreDriver       string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	Port              int           `env:"PORT" envDefault:"8080"`
	RequestTimeout    time.Duration `env:"API_REQUEST_TIMEOUT" envDefault:"10s"`
	StrictCoordinates bool          `env:"STRICT_COORDINATES" envDefault:"false"`
	CORSOrigins       []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat         string        `env:"LOG_FORMAT" envDefault:"json"`
	OTelEndpoint      string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "config: parse env")
	}

	if cfg.DatabaseURL == "" {
		return cfg, eris.New("config: DATABASE_URL is required")
	}
	switch cfg.StoreDriver {
	case "postgres", "sqlite":
	default:
		return cfg, eris.Errorf("config: invalid STORE_DRIVER: %s", cfg.StoreDriver)
	}
	if cfg.Port <= 0 {
		return cfg, eris.Errorf("config: invalid PORT: %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return cfg, eris.Errorf("config: invalid API_REQUEST_TIMEOUT: %s", cfg.RequestTimeout)
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
