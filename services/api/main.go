package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/02loveslollipop/noisemap/services/api/config"
	"github.com/02loveslollipop/noisemap/services/api/db"
	httpserver "github.com/02loveslollipop/noisemap/services/api/http"
	"github.com/02loveslollipop/noisemap/services/api/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.OTelEndpoint, "noisemap-api")
	if err != nil {
		logger.Fatal("tracing setup error", zap.Error(err))
	}
	defer shutdownTracing(context.Background()) //nolint:errcheck

	store, err := db.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL, db.Options{MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Fatal("db connection error", zap.Error(err))
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("db migration error", zap.Error(err))
	}
	logger.Info("database ready", zap.String("driver", cfg.StoreDriver))

	srv := httpserver.New(cfg, store, logger)
	logger.Info("REST API listening", zap.String("addr", cfg.ListenAddr()))

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
