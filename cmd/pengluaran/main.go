package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"pengluaran/internal/amqp"
	"pengluaran/internal/backend"
	"pengluaran/internal/cache"
	"pengluaran/internal/cli"
	apphttp "pengluaran/internal/http"
	"pengluaran/internal/ledger"
	applog "pengluaran/internal/log"
	"pengluaran/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// A nil *amqp.Client must not reach the service as a non-nil interface.
	var (
		publisher  services.EventPublisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP, transaction events disabled", applog.FieldError, err)
		} else {
			publisher = amqpClient
			logger.Info("Publishing transaction events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP_URL not set, transaction events disabled")
	}

	snapshotCache := cache.NewLRUCache[*ledger.Snapshot](cfg.CacheSize, cfg.CacheTTL)
	snapshots := services.NewSnapshots(res.Store, snapshotCache)

	srv := apphttp.NewServer(":"+cfg.Port,
		services.NewTransactionService(res.Store, snapshots, publisher),
		services.NewCategoryService(res.Store, snapshots, cfg.MaxCategoriesPerUser),
		services.NewReportService(res.Store, snapshots),
		apphttp.Options{
			Logger:             logger,
			Ready:              res.Store.Ping,
			Currency:           cfg.Currency,
			Locale:             cfg.Locale,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		})

	ctx, done := cli.GracefulShutdown(logger.Logger, shutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", applog.FieldError, err)
			}
		}
		if err := res.Cleanup(); err != nil {
			logger.Warn("Failed to close backend", applog.FieldError, err)
		}
	})

	janitor := cache.NewJanitor(logger.Logger, snapshotCache)
	go janitor.Run(ctx, cfg.CacheTTL)

	logger.Info("Starting pengluaran server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"cache_size", cfg.CacheSize,
		"cache_ttl", cfg.CacheTTL.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
