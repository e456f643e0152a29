package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/02loveslollipop/noisemap/services/api/models"
)

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at dsn and configures WAL mode.
func NewSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "db: open sqlite")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "db: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

// Ping checks that the database file is usable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "db: ping sqlite")
}

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS readings (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	grid_cell    TEXT NOT NULL,
	stress_score REAL NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_readings_grid_cell ON readings(grid_cell);
`

// Migrate creates the readings table when missing.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchemaSQL)
	return eris.Wrap(err, "db: migrate sqlite")
}

// SubmitReading stores a reading stamped with the current UTC time.
func (s *SQLiteStore) SubmitReading(ctx context.Context, gridCell string, stressScore float64) (models.Reading, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return models.Reading{}, eris.Wrap(err, "db: acquire sqlite conn")
	}
	defer conn.Close()

	ts := s.now().UTC()
	res, err := conn.ExecContext(ctx,
		`INSERT INTO readings (grid_cell, stress_score, created_at) VALUES (?, ?, ?)`,
		gridCell, stressScore, ts.Format(time.RFC3339Nano),
	)
	if err != nil {
		return models.Reading{}, eris.Wrap(err, "db: insert reading")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Reading{}, eris.Wrap(err, "db: reading id")
	}
	return models.Reading{ID: id, GridCell: gridCell, StressScore: stressScore, Timestamp: ts}, nil
}

// ListReadings returns every stored reading in insertion order.
func (s *SQLiteStore) ListReadings(ctx context.Context) ([]models.Reading, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "db: acquire sqlite conn")
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx,
		`SELECT id, grid_cell, stress_score, created_at FROM readings ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "db: list readings")
	}
	defer rows.Close()

	readings := make([]models.Reading, 0)
	for rows.Next() {
		var (
			r       models.Reading
			created string
		)
		if err := rows.Scan(&r.ID, &r.GridCell, &r.StressScore, &created); err != nil {
			return nil, eris.Wrap(err, "db: scan reading")
		}
		r.Timestamp, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, eris.Wrapf(err, "db: parse timestamp of reading %d", r.ID)
		}
		readings = append(readings, r)
	}
	return readings, eris.Wrap(rows.Err(), "db: list readings")
}
