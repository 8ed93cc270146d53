package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"ordenate/internal/config"
	"ordenate/internal/log"
	"ordenate/internal/sheets"
	gsheet "ordenate/internal/sheets/google"
	memsheet "ordenate/internal/sheets/memory"
	"ordenate/internal/storage"
	"ordenate/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting export-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Without spreadsheet credentials exports land in a recording fake,
	// which keeps the consumer draining the queue in dev setups.
	var exporter sheets.DatasetExporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewClient(context.Background(),
			cfg.GoogleSpreadsheetID, cfg.GoogleCredentialsFile, cfg.GoogleCredentialsJSON)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets client initialized", log.FieldSpreadsheetID, cfg.GoogleSpreadsheetID)
	} else {
		exporter = memsheet.NewExporter()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	exportWorker := worker.NewExportWorker(repo, exporter, logger, cfg.ExportTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return exportWorker.Run(groupCtx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	})

	group.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
			return nil
		case <-groupCtx.Done():
			return nil
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
