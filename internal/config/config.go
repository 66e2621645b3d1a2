package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"catatan/internal/core"
)

type Config struct {
	// Telegram
	TelegramToken string
	PublicURL     string // enables webhook mode when set
	WebhookSecret string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// OCR.space
	OCRAPIKey string
	OCRAPIURL string

	// Google Sheets
	SheetID            string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string

	// Ledger backend selection
	LedgerBackend string

	// SQLite backend
	SQLiteDBPath string

	// AMQP (sqlite backend sync)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sync worker
	SyncBatchSize int
	SyncInterval  time.Duration

	// HTTP server
	Port string

	// Keep-alive self-pinger
	KeepAliveCron string
	Timezone      string

	// Domain
	Categories   []string
	SummaryChart bool

	// Logging
	LogLevel string
	LogJSON  bool
}

func Load() *Config {
	return &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		PublicURL:     strings.TrimRight(getEnv("PUBLIC_URL", ""), "/"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		// OCR.space ships a shared free-tier key.
		OCRAPIKey: getEnv("OCR_API_KEY", "helloworld"),
		OCRAPIURL: getEnv("OCR_API_URL", "https://api.ocr.space/parse/image"),

		SheetID:            os.Getenv("GOOGLE_SHEET_ID"),
		SheetName:          getEnv("GOOGLE_SHEET_NAME", "Catatan"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		ServiceAccountFile: firstEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS"),

		LedgerBackend: getEnv("LEDGER_BACKEND", "sheets"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/catatan.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "catatan"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_expenses"),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		Port: getEnv("PORT", "8080"),

		// Every 14 minutes between 06:00 and 23:59 local time. The endpoint
		// itself answers around the clock, only the pinger sleeps.
		KeepAliveCron: getEnv("KEEPALIVE_CRON", "*/14 6-23 * * *"),
		Timezone:      getEnv("TIMEZONE", "Asia/Jakarta"),

		Categories:   getEnvList("CATEGORIES", core.DefaultCategories()),
		SummaryChart: getEnvBool("SUMMARY_CHART", true),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnvBool("LOG_JSON", false),
	}
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if c.TelegramToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}
	if c.GeminiAPIKey == "" {
		errs = append(errs, "GEMINI_API_KEY is required")
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.LedgerBackend {
	case "sheets", "sqlite", "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid ledger backend '%s': must be one of [sheets sqlite memory]", c.LedgerBackend))
	}

	if c.LedgerBackend == "sheets" {
		if c.SheetID == "" {
			errs = append(errs, "GOOGLE_SHEET_ID is required when using the sheets backend")
		}
		if c.ServiceAccountJSON == "" && c.ServiceAccountFile == "" {
			errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the sheets backend")
		}
		if c.ServiceAccountFile != "" {
			if _, err := os.Stat(c.ServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("service account file does not exist: %s", c.ServiceAccountFile))
			}
		}
	}

	if c.LedgerBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLITE_DB_PATH cannot be empty when using the sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.PublicURL != "" {
		if u, err := url.Parse(c.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("invalid public URL '%s'", c.PublicURL))
		}
	}

	if c.SyncBatchSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errs = append(errs, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if len(c.Categories) == 0 {
		errs = append(errs, "category list cannot be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Location returns the configured timezone. Call Validate first; an invalid
// zone falls back to UTC here.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
