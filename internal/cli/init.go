// Package cli holds the start-up steps shared by cmd/fintrack and
// cmd/fintrack-seed.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// SetupLogger creates the application logger at the given level and installs
// it as the slog default.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfigAndLogger loads configuration, builds the logger at the configured
// level and then validates the rest. Exits the process on validation failure.
// An invalid LOG_LEVEL logs at info while the failure is reported.
func LoadConfigAndLogger() (*config.Config, *applog.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// InitStore opens the configured key-value backend and loads the transaction
// store from it. Exits the process on failure. The returned cleanup closes
// the backend.
func InitStore(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*services.TransactionStore, backend.CleanupFunc) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	repo := storage.NewTransactionRepository(res.Store, cfg.StorageKey, storage.WithRepositoryLogger(logger))
	store := services.NewTransactionStore(ctx, repo, services.WithLogger(logger))

	logger.InfoContext(ctx, "Transaction store initialized",
		"backend", cfg.DataBackend,
		applog.FieldStorageKey, repo.Key(),
		applog.FieldCount, store.Len())

	return store, res.Cleanup
}
