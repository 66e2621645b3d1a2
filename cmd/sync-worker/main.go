package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"catatan/internal/amqp"
	"catatan/internal/config"
	"catatan/internal/ledger/google"
	applog "catatan/internal/log"
	"catatan/internal/storage"
	"catatan/internal/worker"
)

// The sync worker drains locally stored expenses into Google Sheets. It
// consumes AMQP notifications for low latency and scans for pending rows on
// an interval to recover anything a lost message left behind.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	applog.Setup(cfg.LogLevel, cfg.LogJSON)
	logger := applog.WithComponent("sync-worker")

	if err := run(cfg, logger); err != nil {
		logger.Error("Sync worker exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Sync worker stopped gracefully")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.SheetID == "" {
		return fmt.Errorf("GOOGLE_SHEET_ID is required: the sync worker has nowhere to sync to")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("initialize SQLite repository: %w", err)
	}
	defer repo.Close()

	sheetsClient, err := google.New(ctx, google.Settings{
		SpreadsheetID:      cfg.SheetID,
		SheetName:          cfg.SheetName,
		ServiceAccountJSON: cfg.ServiceAccountJSON,
		ServiceAccountFile: cfg.ServiceAccountFile,
	})
	if err != nil {
		return fmt.Errorf("initialize Google Sheets client: %w", err)
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on periodic sync only", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	w := worker.NewSyncWorker(repo, sheetsClient, cfg.SyncBatchSize)

	// Catch up on anything written while the worker was down.
	if err := w.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeExpenseSync(ctx, func(msg *amqp.ExpenseSyncMessage) error {
				return w.HandleSyncMessage(ctx, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("consume sync messages: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		err := w.RunPeriodic(ctx, cfg.SyncInterval)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("periodic sync: %w", err)
		}
		return nil
	})

	return g.Wait()
}
