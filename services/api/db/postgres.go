package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/02loveslollipop/noisemap/services/api/models"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. Every call
// acquires a connection from the pool and releases it before returning.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore wraps reading access on a pgx pool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore backed by a pgx pool.
func NewPostgres(ctx context.Context, databaseURL string, opts Options) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "db: parse postgres config")
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "db: create postgres pool")
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SendBatch queues b on one pooled connection. The bulk importer writes
// through it after Migrate.
func (s *PostgresStore) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return s.pool.SendBatch(ctx, b)
}

// Ping checks that the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "db: ping postgres")
}

const postgresSchemaSQL = `
CREATE SCHEMA IF NOT EXISTS noisemap;

CREATE TABLE IF NOT EXISTS noisemap.readings (
	id           BIGSERIAL PRIMARY KEY,
	grid_cell    TEXT NOT NULL,
	stress_score DOUBLE PRECISION NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_readings_grid_cell ON noisemap.readings(grid_cell);
`

// Migrate creates the readings table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchemaSQL)
	return eris.Wrap(err, "db: migrate postgres")
}

const insertReadingSQL = `
    INSERT INTO noisemap.readings (grid_cell, stress_score)
    VALUES ($1, $2)
    RETURNING id, created_at
`

// SubmitReading stores a reading and returns it with the database-assigned
// id and timestamp.
func (s *PostgresStore) SubmitReading(ctx context.Context, gridCell string, stressScore float64) (models.Reading, error) {
	r := models.Reading{GridCell: gridCell, StressScore: stressScore}
	if err := s.pool.QueryRow(ctx, insertReadingSQL, gridCell, stressScore).Scan(&r.ID, &r.Timestamp); err != nil {
		return models.Reading{}, eris.Wrap(err, "db: insert reading")
	}
	r.Timestamp = r.Timestamp.UTC()
	return r, nil
}

const listReadingsSQL = `
    SELECT id, grid_cell, stress_score, created_at
    FROM noisemap.readings
    ORDER BY id
`

// ListReadings returns every stored reading.
func (s *PostgresStore) ListReadings(ctx context.Context) ([]models.Reading, error) {
	rows, err := s.pool.Query(ctx, listReadingsSQL)
	if err != nil {
		return nil, eris.Wrap(err, "db: list readings")
	}
	defer rows.Close()

	readings := make([]models.Reading, 0)
	for rows.Next() {
		var r models.Reading
		if err := rows.Scan(&r.ID, &r.GridCell, &r.StressScore, &r.Timestamp); err != nil {
			return nil, eris.Wrap(err, "db: scan reading")
		}
		r.Timestamp = r.Timestamp.UTC()
		readings = append(readings, r)
	}
	return readings, eris.Wrap(rows.Err(), "db: list readings")
}
