// Package cli provides common initialization shared by cmd/spendwise,
// cmd/spendwise-cli and cmd/spendwise-notifier.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spendwise/internal/config"
	"spendwise/internal/ledger"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

// SetupLogger builds the process logger at the given level, writing to out,
// and installs it as the slog default.
func SetupLogger(level string, out io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// NewTracker loads the seed file at seedPath, creates an empty ledger and
// installs the seed budgets through the tracker. alerts may be nil.
func NewTracker(ctx context.Context, seedPath string, alerts services.AlertPublisher, logger *log.Logger) (*services.Tracker, error) {
	seed, err := config.LoadSeed(seedPath)
	if err != nil {
		return nil, err
	}
	budgets, err := seed.ParsedBudgets()
	if err != nil {
		return nil, err
	}

	tracker := services.NewTracker(ledger.New(), seed.Categories, alerts, logger)
	for _, b := range budgets {
		if _, err := tracker.SetBudget(ctx, services.BudgetInput{
			Category: b.Category,
			Amount:   b.Limit.String(),
		}); err != nil {
			return nil, fmt.Errorf("seed budget %q: %w", b.Category, err)
		}
	}
	logger.Info("Ledger initialized",
		"seed_file", seedPath,
		"categories", len(seed.Categories),
		"budgets", len(budgets))
	return tracker, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM. The
// received signal is logged once.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
