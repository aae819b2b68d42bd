package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cashflow/internal/amqp"
	"cashflow/internal/backend"
	"cashflow/internal/cli"
	"cashflow/internal/core"
	"cashflow/internal/log"
	"cashflow/internal/obligation"
	ports "cashflow/internal/sheets"
	gsheet "cashflow/internal/sheets/google"
	mem "cashflow/internal/sheets/memory"
	"cashflow/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting cashflow-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	// Google Sheets export is optional; without it projections stay in memory
	var writer ports.ProjectionWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		writer = mem.New()
		logger.Warn("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, exports are kept in memory")
	}

	opts, err := cfg.ObligationOptions()
	if err != nil {
		logger.Error("Invalid obligation options", log.FieldError, err)
		os.Exit(1)
	}
	calc, err := obligation.NewCalculator(opts)
	if err != nil {
		logger.Error("Failed to build obligation calculator", log.FieldError, err)
		os.Exit(1)
	}

	exporter := worker.NewExportWorker(result.Store, calc, writer, worker.Options{
		BaseCurrency:   core.Currency(cfg.BaseCurrency),
		DefaultHorizon: cfg.HorizonMonths,
		MaxHorizon:     cfg.MaxHorizonMonths,
		Anchor:         cli.AnchorFunc(cfg),
	})

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Bring the sheet up to date in case refresh messages were missed
		if err := exporter.StartupExport(gctx); err != nil {
			logger.Error("Startup export failed", log.FieldError, err)
		}
		return nil
	})
	g.Go(func() error {
		return amqpClient.Consume(gctx, exporter.HandleRefresh)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
