package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/02loveslollipop/noisemap/services/importer/internal/models"
)

// BatchSender is satisfied by *pgxpool.Pool.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const insertReadingSQL = `INSERT INTO noisemap.readings (grid_cell, stress_score) VALUES ($1, $2)`

// InsertReadings writes rows to noisemap.readings in a single batch.
func InsertReadings(ctx context.Context, pool BatchSender, rows []models.ReadingRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertReadingSQL, r.GridCell, r.StressScore)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for i := range rows {
		if _, err := res.Exec(); err != nil {
			return eris.Wrapf(err, "db: insert reading %d of %d", i+1, len(rows))
		}
	}

	return nil
}
