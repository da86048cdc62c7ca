package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"budgeteer/internal/amqp"
	"budgeteer/internal/cli"
	applog "budgeteer/internal/log"
	"budgeteer/internal/storage"
	"budgeteer/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	db := cli.OpenDatabase(logger, cfg.SQLiteDBPath)
	defer db.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notify := worker.NewNotifyWorker(storage.NewAccountRepo(db))
	sweeper := worker.NewSessionSweeper(storage.NewSessionRepo(db), cfg.SessionSweepInterval)

	logger.Info("Worker started",
		"queue", cfg.AMQPQueue,
		"sweep_interval", cfg.SessionSweepInterval.String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeNotifications(ctx, func(msg *amqp.NotificationMessage) error {
			return notify.HandleNotification(ctx, msg)
		})
	})
	g.Go(func() error {
		return sweeper.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}
