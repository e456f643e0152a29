package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apidb "github.com/02loveslollipop/noisemap/services/api/db"
	"github.com/02loveslollipop/noisemap/services/api/telemetry"
	"github.com/02loveslollipop/noisemap/services/importer/internal/config"
	"github.com/02loveslollipop/noisemap/services/importer/internal/db"
	"github.com/02loveslollipop/noisemap/services/importer/internal/source"
	"github.com/02loveslollipop/noisemap/services/importer/internal/utils"
)

// readingSink is the store the importer writes through.
type readingSink interface {
	Migrate(ctx context.Context) error
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Close()
}

type openSinkFunc func(ctx context.Context, databaseURL string) (readingSink, error)

func openPostgres(ctx context.Context, databaseURL string) (readingSink, error) {
	store, err := apidb.NewPostgres(ctx, databaseURL, apidb.Options{MaxConns: 2})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func main() {
	logger, err := telemetry.NewLogger(config.LogSettings())
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(logger, openPostgres).ExecuteContext(ctx); err != nil {
		logger.Fatal("importer failed", zap.Error(err))
	}
}

func newRootCmd(logger *zap.Logger, open openSinkFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "noisemap-importer",
		Short:         "Bulk-load stress readings into the noisemap store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLoadCmd(logger, open))
	return root
}

func newLoadCmd(logger *zap.Logger, open openSinkFunc) *cobra.Command {
	var (
		src    string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load readings from a JSON file or URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), logger, open, src, dryRun)
		},
	}
	cmd.Flags().StringVar(&src, "source", "", "path or http(s) URL of a JSON array of readings")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and quantize without writing")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func run(parent context.Context, logger *zap.Logger, open openSinkFunc, src string, dryRun bool) error {
	cfg, err := config.Load(dryRun)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(parent, cfg.RequestTimeout+10*time.Second)
	defer cancel()

	client := &http.Client{Timeout: cfg.RequestTimeout}

	feed, err := source.Fetch(ctx, client, src)
	if err != nil {
		return err
	}

	rows, skipped := utils.BuildReadingRows(feed)
	logger.Info("prepared readings",
		zap.String("source", src),
		zap.Int("fetched", len(feed)),
		zap.Int("valid", len(rows)),
		zap.Int("skipped", len(skipped)),
		zap.Bool("dry_run", cfg.DryRun),
	)
	for _, fr := range skipped {
		logger.Warn("skipping reading",
			zap.String("latitude", utils.ValuePtrString(fr.Latitude)),
			zap.String("longitude", utils.ValuePtrString(fr.Longitude)),
			zap.String("stress_score", utils.ValuePtrString(fr.StressScore)),
		)
	}

	if cfg.DryRun {
		for _, row := range rows {
			logger.Info("dry-run: would insert",
				zap.String("grid_cell", row.GridCell),
				zap.Float64("stress_score", row.StressScore),
			)
		}
		return nil
	}

	if len(rows) == 0 {
		logger.Info("no readings to insert")
		return nil
	}

	sink, err := open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer sink.Close()

	if err := sink.Migrate(ctx); err != nil {
		return err
	}

	if err := db.InsertReadings(ctx, sink, rows); err != nil {
		return err
	}

	logger.Info("inserted readings", zap.Int("count", len(rows)))
	return nil
}
