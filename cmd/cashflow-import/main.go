package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/cli"
	"cashflow/internal/core"
	"cashflow/internal/dataset/fixtures"
	"cashflow/internal/log"
	"cashflow/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	dir := flag.String("dir", cfg.DataDir, "fixtures directory to import")
	dbPath := flag.String("db", cfg.SQLiteDBPath, "SQLite database to write")
	anchorFlag := flag.String("anchor", "", "anchor month (YYYY-MM) for the refresh request")
	months := flag.Int("months", cfg.HorizonMonths, "horizon for the refresh request")
	flag.Parse()

	anchor := cli.AnchorFunc(cfg)()
	if *anchorFlag != "" {
		m, err := core.ParseMonth(*anchorFlag)
		if err != nil {
			logger.Error("Invalid -anchor flag", log.FieldError, err)
			os.Exit(2)
		}
		anchor = m
	}
	if *months < 0 || *months > cfg.MaxHorizonMonths {
		logger.Error("Invalid -months flag", "months", *months, "max", cfg.MaxHorizonMonths)
		os.Exit(2)
	}

	conv, err := cfg.Converter()
	if err != nil {
		logger.Error("Invalid currency configuration", log.FieldError, err)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, *dbPath)
	defer repo.Close()

	// Leave publisher a nil interface when AMQP is off
	var publisher services.RefreshPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, import will not request a refresh", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	importer := services.NewImportService(fixtures.NewLoader(*dir, conv), repo, publisher, logger)
	res, err := importer.Import(ctx, anchor, *months)
	if err != nil {
		logger.Error("Import failed", log.FieldError, err, "dir", *dir)
		os.Exit(1)
	}

	run, ok, err := repo.LastImport(ctx)
	if err != nil || !ok {
		logger.Warn("Could not read import record", log.FieldError, err)
	}
	fmt.Printf("imported %d records from %s into %s (run %d, refresh published: %t)\n",
		res.RecordCount, *dir, *dbPath, run.ID, res.Published)
}
