package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/amqp"
	"spendwise/internal/cli"
	"spendwise/internal/log"
	"spendwise/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger("info", os.Stdout)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout)

	if !cfg.AlertsEnabled() {
		logger.Error("AMQP_URL is required for the notifier",
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNetwork)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	w := worker.NewAlertWorker(logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting spendwise-notifier", "queue", cfg.AMQPQueue)
		return client.ConsumeBudgetAlerts(gctx, w.HandleAlertMessage)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Notifier stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	stats := w.Stats()
	logger.Info("Notifier stopped gracefully",
		"handled", stats.Handled,
		"crossed", stats.Crossed,
		"rejected", stats.Rejected)
}
