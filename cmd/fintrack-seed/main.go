package main

import (
	"context"
	"flag"
	"os"

	"fintrack/internal/cli"
	applog "fintrack/internal/log"
	"fintrack/internal/seed"
)

func main() {
	var (
		count  = flag.Int("n", 50, "number of transactions to add")
		months = flag.Int("months", 6, "spread dates over this many past months")
		rnd    = flag.Int64("seed", 0, "random seed (0 picks one)")
	)
	flag.Parse()

	cli.LoadEnvFile()
	cfg, appLogger := cli.LoadConfigAndLogger()
	logger := appLogger.WithComponent(applog.ComponentSeed)

	ctx := context.Background()
	store, cleanup := cli.InitStore(ctx, logger, cfg)
	defer cleanup()

	before := store.Len()
	for _, d := range seed.NewGenerator(*rnd, *months).Drafts(*count) {
		if _, err := store.Add(ctx, d); err != nil {
			logger.Error("Failed to add seed transaction", applog.FieldError, err)
			cleanup()
			os.Exit(1)
		}
	}

	logger.Info("Seed complete",
		"added", store.Len()-before,
		applog.FieldCount, store.Len(),
		"backend", cfg.DataBackend)
}
