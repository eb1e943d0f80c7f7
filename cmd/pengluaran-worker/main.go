package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"pengluaran/internal/amqp"
	"pengluaran/internal/backend"
	"pengluaran/internal/cli"
	"pengluaran/internal/config"
	applog "pengluaran/internal/log"
	"pengluaran/internal/sheets"
	gsheet "pengluaran/internal/sheets/google"
	memsheet "pengluaran/internal/sheets/memory"
	"pengluaran/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.Warn("Worker is using the memory backend; it cannot see the server's transactions")
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	mirror, err := newMirror(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", applog.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	scheduler := cron.New()

	ctx, done := cli.GracefulShutdown(logger.Logger, shutdownTimeout, func(shutdownCtx context.Context) {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Warn("Archive run still in progress at shutdown")
		}
		if err := amqpClient.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", applog.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Warn("Failed to close backend", applog.FieldError, err)
		}
	})

	syncWorker := worker.NewSyncWorker(res.Store, mirror)
	archiver := worker.NewArchiver(res.Store, mirror)

	if _, err := archiver.Schedule(ctx, scheduler, cfg.ArchiveSchedule); err != nil {
		logger.Error("Failed to schedule monthly archive", applog.FieldError, err)
		os.Exit(1)
	}
	scheduler.Start()

	// Rows whose events were lost while the worker was down.
	if _, _, err := syncWorker.ResyncAll(ctx); err != nil {
		logger.Error("Startup resync failed", applog.FieldError, err)
	}

	go func() {
		err := amqpClient.ConsumeTransactionEvents(ctx, syncWorker.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Event consumption stopped", applog.FieldError, err)
		}
	}()

	logger.Info("Worker started",
		applog.FieldOperation, applog.OpStartup,
		"queue", cfg.AMQPQueue,
		"archive_schedule", cfg.ArchiveSchedule,
		"sheets", cfg.SheetsEnabled())

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

// newMirror returns the Google Sheets mirror when a spreadsheet is
// configured and an in-memory one otherwise.
func newMirror(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.TransactionMirror, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("GOOGLE_SPREADSHEET_ID not set, mirroring into memory only")
		return memsheet.New(), nil
	}
	return gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:    cfg.GoogleSpreadsheetID,
		SheetName:        cfg.GoogleSheetName,
		SummarySheetName: cfg.GoogleSummarySheetName,
		CredentialsJSON:  cfg.GoogleServiceAccountJSON,
		CredentialsFile:  cfg.GoogleServiceAccountFile,
	})
}
