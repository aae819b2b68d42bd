package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/backend"
	"cashflow/internal/cache"
	"cashflow/internal/cli"
	"cashflow/internal/core"
	apphttp "cashflow/internal/http"
	"cashflow/internal/log"
	"cashflow/internal/obligation"
	"cashflow/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

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

	forecasts := services.NewForecastService(result.Store, calc, services.ForecastOptions{
		BaseCurrency: core.Currency(cfg.BaseCurrency),
		MaxHorizon:   cfg.MaxHorizonMonths,
		CacheTTL:     cfg.DatasetCacheTTL,
	}, logger)

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(forecasts.SnapshotCache())
	cacheManager.StartCleanup(time.Minute)

	// Periodic refresh requests for the export worker (optional)
	var (
		amqpClient *amqp.Client
		scheduler  *services.RefreshScheduler
	)
	if cfg.AMQPURL != "" && cfg.RefreshInterval > 0 {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		scheduler = services.NewRefreshScheduler(amqpClient, forecasts, services.RefreshSchedulerConfig{
			Interval: cfg.RefreshInterval,
			Horizon:  cfg.HorizonMonths,
			Anchor:   cli.AnchorFunc(cfg),
		}, logger)
		if err := scheduler.Start(context.Background()); err != nil {
			logger.Error("Failed to start refresh scheduler", log.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("Scheduled refresh disabled", "amqp_configured", cfg.AMQPURL != "", "refresh_interval", cfg.RefreshInterval)
	}

	srv := apphttp.NewServer(":"+cfg.Port, forecasts, apphttp.Options{
		Anchor:         cli.AnchorFunc(cfg),
		DefaultHorizon: cfg.HorizonMonths,
		MaxMonths:      cfg.MaxHorizonMonths,
		Ready:          apphttp.ReadyFunc(result.Ready),
		Logger:         logger,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if scheduler != nil {
			if err := scheduler.Stop(ctx); err != nil {
				logger.Warn("Refresh scheduler did not stop cleanly", log.FieldError, err)
			}
		}
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		cacheManager.Stop()
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting cashflow server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"base_currency", cfg.BaseCurrency,
		"horizon_months", cfg.HorizonMonths)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
