package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgeteer/internal/amqp"
	"budgeteer/internal/auth"
	"budgeteer/internal/cache"
	"budgeteer/internal/cli"
	"budgeteer/internal/core"
	apphttp "budgeteer/internal/http"
	applog "budgeteer/internal/log"
	"budgeteer/internal/services"
	"budgeteer/internal/sheets"
	"budgeteer/internal/sheets/google"
	"budgeteer/internal/sheets/memory"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	db := cli.OpenDatabase(logger, cfg.SQLiteDBPath)
	defer db.Close()

	ctx := context.Background()

	// The API keeps working without a broker; notifications stay in the
	// database and the publish step is skipped.
	var publisher services.Publisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, notifications will not be published", "error", err)
	} else {
		publisher = amqpClient
		defer amqpClient.Close()
	}

	var writer sheets.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		writer, err = google.New(ctx, google.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets export", "error", err)
			os.Exit(1)
		}
	} else {
		writer = memory.New()
		logger.Info("No spreadsheet configured, report exports stay in memory")
	}

	bundle := services.NewBundle(db, services.BundleConfig{
		LoginPolicy: auth.LoginPolicy{
			AttemptLimit: cfg.LoginAttemptLimit,
			LockDuration: cfg.LoginLockDuration,
		},
		SessionTimeout: cfg.SessionTimeout,
		Publisher:      publisher,
		ReportCache:    cache.NewLRUCache[core.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL),
		ReportWriter:   writer,
	})

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:       bundle.Auth,
		Categories: bundle.Categories,
		Rules:      bundle.Rules,
		Txns:       bundle.Transactions,
		Budgets:    bundle.Budgets,
		Goals:      bundle.Goals,
		Reports:    bundle.Reports,
		Notifier:   bundle.Notifier,
		Logger:     logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
