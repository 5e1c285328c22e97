package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"tradebook/internal/amqp"
	"tradebook/internal/cli"
	apphttp "tradebook/internal/http"
	"tradebook/internal/journal"
	"tradebook/internal/llm"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

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

	// AMQP is optional: without it trades are still written locally and
	// picked up by the worker's periodic pending sweep.
	var publisher journal.SyncPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, trade sync messages disabled", "error", err)
	} else {
		publisher = amqpClient
		defer amqpClient.Close()
	}

	svc := journal.NewService(store, publisher)

	var assistant llm.Assistant
	if cfg.OpenAIAPIKey != "" {
		assistant, err = llm.NewOpenAIAssistant(llm.Options{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.ChatModel,
		})
		if err != nil {
			logger.Error("Failed to initialize chat assistant", "error", err)
			os.Exit(1)
		}
		logger.Info("Chat assistant enabled", "model", cfg.ChatModel)
	} else {
		logger.Info("Chat assistant disabled - no OPENAI_API_KEY provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, assistant)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		sdCtx, sdCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer sdCancel()
		if err := srv.Shutdown(sdCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting tradebook server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	slog.Info("Server stopped gracefully")
}
