// Package cli consolidates the startup plumbing shared by the budgeteer
// entry points.
package cli

import (
	"database/sql"
	"os"

	"github.com/joho/godotenv"

	"budgeteer/internal/config"
	applog "budgeteer/internal/log"
	"budgeteer/internal/storage"
)

// LoadEnvFile loads the .env file for local development. Errors are ignored
// silently as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes the component-tagged logger and installs it as the
// process default.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenDatabase opens and migrates the SQLite database, exiting the process on
// failure.
func OpenDatabase(logger *applog.Logger, dbPath string) *sql.DB {
	db, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return db
}
