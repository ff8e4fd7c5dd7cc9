package main

import (
	"context"
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"

	"spendwise/internal/cli"
	"spendwise/internal/console"
)

type Params struct {
	Seed     string `descr:"Path to the YAML seed file (categories and budgets)" default:"data/seed.yaml"`
	LogLevel string `descr:"Log level (debug, info, warn, error)" default:"warn"`
}

func main() {
	boa.NewCmdT[Params]("spendwise-cli").
		WithShort("Track expenses and budgets from the terminal").
		WithLong("Interactive expense and budget tracker. Records expenses against categories, keeps per-category budgets and reports totals. Data lives in memory for the length of the session.").
		WithRunFunc(func(params *Params) {
			cli.LoadEnvFile()
			// Logs go to stderr so they never interleave with the tables.
			logger := cli.SetupLogger(params.LogLevel, os.Stderr)

			ctx := context.Background()

			tracker, err := cli.NewTracker(ctx, params.Seed, nil, logger)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading seed file: %v\n", err)
				os.Exit(1)
			}

			c := console.New(tracker, os.Stdin, os.Stdout, logger)
			if err := c.Run(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}
