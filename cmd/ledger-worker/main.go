// Command ledger-worker materializes due recurring transactions and publishes
// bill and credit limit notifications on a fixed interval.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"pocketledger/internal/cli"
	"pocketledger/internal/core"
	applog "pocketledger/internal/log"
	"pocketledger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentWorker, os.Stdout)
	logger.Info("Starting ledger-worker")

	store, err := cli.OpenStore(cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	svc := cli.NewLedgerService(cfg, store)

	var publisher services.Publisher
	client := cli.ConnectAMQP(cfg, logger)
	if client != nil {
		publisher = client
	}

	processor := services.NewRecurringProcessor(svc, store)
	notifier := services.NewNotifier(svc, store, publisher)
	w := services.NewWorker(
		services.Job{
			Name:     applog.ComponentRecurring,
			Interval: cfg.WorkerInterval,
			Run:      processor.ProcessDue,
		},
		services.Job{
			Name:     applog.ComponentNotify,
			Interval: cfg.WorkerInterval,
			Run: func(ctx context.Context, now time.Time) (int, error) {
				return notifier.Publish(ctx, core.DateOf(now))
			},
		},
	)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := w.Stop(ctx); err != nil {
			logger.Error("Worker stop failed", "error", err)
		}
		if client != nil {
			client.Close()
		}
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close ledger", "error", err)
		}
	})

	logger.Info("Worker configured",
		"interval", cfg.WorkerInterval,
		"owner_id", cfg.OwnerID,
		"backend", cfg.DataBackend)
	if err := w.Start(ctx); err != nil {
		logger.Error("Failed to start worker", "error", err)
		os.Exit(1)
	}

	<-done
}
