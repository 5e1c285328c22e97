package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradebook/internal/amqp"
	"tradebook/internal/cli"
	"tradebook/internal/export"
	"tradebook/internal/scheduler"
	"tradebook/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting tradebook-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup := cli.InitStore(ctx, logger, cfg)
	if cleanup != nil {
		defer func() {
			if err := cleanup(); err != nil {
				logger.Error("Store cleanup failed", "error", err)
			}
		}()
	}

	// Google Sheets export is optional
	var exporter worker.TradeExporter
	if cfg.GoogleSpreadsheetID != "" {
		sheetClient, err := export.NewSheetClient(ctx, export.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = sheetClient
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	summaryWorker := worker.NewSummaryWorker(store, exporter, cfg.SyncBatchSize)

	// Drain any backlog left over from downtime before consuming.
	logger.Info("Performing startup sync check...")
	if err := summaryWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
		// Don't exit - continue with normal operation
	}

	// AMQP consumption is optional; the periodic sweep still covers
	// pending trades when the broker is down.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, relying on periodic sweep only", "error", err)
	} else {
		defer amqpClient.Close()
		go func() {
			handler := func(msg *amqp.TradeSyncMessage) error {
				return summaryWorker.HandleTradeSync(ctx, msg)
			}
			if err := amqpClient.ConsumeTradeSync(ctx, handler); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error("Message consumption failed", "error", err)
				}
				cancel()
			}
		}()
	}

	// Periodic sweep for trades whose sync messages were lost.
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := summaryWorker.ProcessPendingTrades(ctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	}()

	// Nightly reconciliation of materialized monthly summaries.
	sched := scheduler.New(ctx, summaryWorker)
	if err := sched.Register(cfg.ReconcileCron); err != nil {
		logger.Error("Failed to register reconciliation schedule", "error", err, "cron", cfg.ReconcileCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(5 * time.Second):
		logger.Info("Worker shutdown complete")
	}
}
