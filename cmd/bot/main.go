package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"catatan/internal/adapters"
	"catatan/internal/ai"
	"catatan/internal/amqp"
	"catatan/internal/bot"
	"catatan/internal/config"
	"catatan/internal/httpapi"
	"catatan/internal/keepalive"
	"catatan/internal/ledger"
	"catatan/internal/ledger/google"
	"catatan/internal/ledger/memory"
	applog "catatan/internal/log"
	"catatan/internal/ocr"
	"catatan/internal/services"
	"catatan/internal/storage"
)

func main() {
	// Load .env for local development; in production the env is already set.
	_ = godotenv.Load()

	cfg := config.Load()
	applog.Setup(cfg.LogLevel, cfg.LogJSON)
	logger := applog.WithComponent("bot")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Bot exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Bot stopped gracefully")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	led, cleanup, err := buildLedger(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize ledger backend: %w", err)
	}
	defer cleanup()

	parser, err := ai.NewParser(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Categories)
	if err != nil {
		return fmt.Errorf("initialize Gemini parser: %w", err)
	}

	ocrClient := ocr.NewClient(cfg.OCRAPIKey, cfg.OCRAPIURL)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("initialize Telegram API: %w", err)
	}
	logger.Info("Authorized on Telegram", "username", api.Self.UserName)

	location := cfg.Location()
	b := bot.New(api, led, parser, ocrClient, bot.Options{
		Token:        cfg.TelegramToken,
		Categories:   cfg.Categories,
		Location:     location,
		SummaryChart: cfg.SummaryChart,
	})

	webhookMode := cfg.PublicURL != ""
	if webhookMode {
		if err := registerWebhook(api, cfg); err != nil {
			return fmt.Errorf("register webhook: %w", err)
		}
		logger.Info("Webhook registered", "url", cfg.PublicURL+"/webhook")
	} else {
		// Drop any webhook left by a previous deployment; getUpdates and
		// webhooks are mutually exclusive on the Telegram side.
		if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			logger.Warn("Failed to delete stale webhook", "error", err)
		}
	}

	srv := httpapi.NewServer(":"+cfg.Port, b, cfg.WebhookSecret)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "port", cfg.Port, "webhook_mode", webhookMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if !webhookMode {
		g.Go(func() error {
			if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("polling loop: %w", err)
			}
			return nil
		})
	}

	var pingURL string
	if cfg.PublicURL != "" {
		pingURL = cfg.PublicURL + "/warmup"
	}
	pinger := keepalive.New(pingURL, cfg.KeepAliveCron, location)
	if err := pinger.Start(ctx); err != nil {
		return fmt.Errorf("start keep-alive pinger: %w", err)
	}
	defer pinger.Stop()

	return g.Wait()
}

// buildLedger wires the configured ledger backend. The returned cleanup is
// safe to call even on a partially built backend.
func buildLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ledger.Ledger, func(), error) {
	noop := func() {}

	switch cfg.LedgerBackend {
	case "sheets":
		client, err := google.New(ctx, google.Settings{
			SpreadsheetID:      cfg.SheetID,
			SheetName:          cfg.SheetName,
			ServiceAccountJSON: cfg.ServiceAccountJSON,
			ServiceAccountFile: cfg.ServiceAccountFile,
		})
		if err != nil {
			return nil, noop, err
		}
		logger.Info("Using Google Sheets ledger", "spreadsheet_id", cfg.SheetID, "sheet", cfg.SheetName)
		return client, noop, nil

	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, noop, err
		}

		var amqpClient *amqp.Client
		if cfg.AMQPURL != "" {
			amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				// The periodic pending scan in the sync worker picks these
				// rows up even without a broker.
				logger.Warn("AMQP unavailable, relying on periodic sync", "error", err)
				amqpClient = nil
			}
		}

		service := services.NewExpenseService(repo, amqpClient)
		cleanup := func() {
			if err := service.Close(); err != nil {
				logger.Warn("Failed to close expense service", "error", err)
			}
		}
		logger.Info("Using SQLite ledger", "path", cfg.SQLiteDBPath, "amqp", amqpClient != nil)
		return adapters.NewSQLiteAdapter(repo, service), cleanup, nil

	case "memory":
		logger.Warn("Using in-memory ledger, data is lost on restart")
		return memory.New(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}

// registerWebhook calls setWebhook directly: the client library predates the
// secret_token parameter.
func registerWebhook(api *tgbotapi.BotAPI, cfg *config.Config) error {
	params := make(tgbotapi.Params)
	params["url"] = cfg.PublicURL + "/webhook"
	params.AddNonEmpty("secret_token", cfg.WebhookSecret)

	resp, err := api.MakeRequest("setWebhook", params)
	if err != nil {
		return err
	}
	if !resp.Ok {
		return fmt.Errorf("setWebhook failed: %s", resp.Description)
	}
	return nil
}
