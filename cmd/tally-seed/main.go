// Command tally-seed populates the database with a deterministic demo
// fixture: twelve months of transactions plus a budget for every category.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/seed"
	"tally/internal/storage"
)

func main() {
	reset := flag.Bool("reset", false, "wipe all transactions and budgets before seeding")
	allowDuplicates := flag.Bool("allow-duplicates", false, "seed even when transactions already exist")
	skipBudgets := flag.Bool("skip-budgets", false, "seed transactions only")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := log.New(log.Config{
		Component: log.ComponentSeed,
		Handler:   slog.NewTextHandler(os.Stdout, nil),
	})

	repo, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open storage", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()
	seeder := seed.New(repo)

	if *reset {
		if err := seeder.Reset(ctx); err != nil {
			logger.Error("Reset failed", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Store reset", log.FieldOperation, log.OpReset)
	}

	n, err := seeder.SeedTransactions(ctx, *allowDuplicates)
	if err != nil {
		logger.Error("Seeding transactions failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Transactions seeded", log.FieldCount, n, log.FieldOperation, log.OpSeed)

	if !*skipBudgets {
		if err := seeder.SeedBudgets(ctx); err != nil {
			logger.Error("Seeding budgets failed", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Budgets seeded", log.FieldOperation, log.OpSeed)
	}
}
