package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/amqp"
	"spendwise/internal/cli"
	apphttp "spendwise/internal/http"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger("info", os.Stdout)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	// Budget alerts are optional; a nil publisher turns them off.
	var alerts services.AlertPublisher
	if cfg.AlertsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client",
				log.FieldError, err.Error(),
				log.FieldErrorType, log.ErrorTypeNetwork)
			os.Exit(1)
		}
		defer client.Close()
		alerts = client
		logger.Info("Budget alerts enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Budget alerts disabled - no AMQP_URL provided")
	}

	tracker, err := cli.NewTracker(ctx, cfg.SeedFile, alerts, logger)
	if err != nil {
		logger.Error("Failed to load seed file",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration,
			"seed_file", cfg.SeedFile)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, tracker, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting spendwise server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
