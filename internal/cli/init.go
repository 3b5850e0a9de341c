// Package cli consolidates the initialization shared by cmd/kopilka and
// cmd/provision: logging, .env loading, config validation, and ledger
// backend construction.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"kopilka/internal/config"
	"kopilka/internal/identity"
	"kopilka/internal/ledger"
	"kopilka/internal/ledger/google"
	"kopilka/internal/ledger/memory"
	"kopilka/internal/ledger/sqlite"
	"kopilka/internal/log"
)

// SetupLogger initializes structured logging and sets the default logger.
// LOG_LEVEL is read here rather than from config so that config validation
// failures are logged at the requested level too.
func SetupLogger() *log.Logger {
	logger := log.New(log.Config{Level: logLevel()})
	log.SetDefault(logger)
	return logger
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadEnvFile loads the .env file for local development. Missing files are
// fine in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates the common
// settings, exiting the process on failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// NewLedger builds the configured ledger backend. For the sheets backend the
// spreadsheet identifier comes from the env override or the identity file;
// an empty identifier is allowed and means provisioning has not run yet.
func NewLedger(ctx context.Context, cfg *config.Config, ids *identity.Store) (ledger.Ledger, error) {
	switch cfg.LedgerBackend {
	case "sqlite":
		repo, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "memory":
		return memory.New(), nil
	default: // sheets
		spreadsheetID := cfg.SpreadsheetID
		if spreadsheetID == "" {
			loaded, err := ids.Load()
			if err != nil {
				return nil, err
			}
			spreadsheetID = loaded.SpreadsheetID
		}
		client, err := google.New(ctx, google.Config{
			SpreadsheetID: spreadsheetID,
			OwnerEmail:    cfg.OwnerEmail,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
