package db

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/02loveslollipop/noisemap/services/api/models"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store is the append-only reading collection behind the API.
type Store interface {
	// SubmitReading appends a reading; id and timestamp are assigned here.
	SubmitReading(ctx context.Context, gridCell string, stressScore float64) (models.Reading, error)
	// ListReadings returns every stored reading in insertion order.
	ListReadings(ctx context.Context) ([]models.Reading, error)

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// Options tunes the opened store.
type Options struct {
	MaxConns int32
}

// Open connects to the store selected by driver.
func Open(ctx context.Context, driver, databaseURL string, opts Options) (Store, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgres(ctx, databaseURL, opts)
	case DriverSQLite:
		return NewSQLite(ctx, databaseURL)
	default:
		return nil, eris.Errorf("db: unsupported store driver %q", driver)
	}
}
