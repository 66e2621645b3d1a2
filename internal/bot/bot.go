package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"catatan/internal/cache"
	"catatan/internal/core"
	"catatan/internal/ledger"
	"catatan/internal/metrics"
)

// telegramAPI is the slice of *tgbotapi.BotAPI the bot actually uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// ExpenseParser extracts a structured expense from free text.
type ExpenseParser interface {
	ParseExpenseText(ctx context.Context, text string, now time.Time) (core.Expense, error)
	ParseReceiptText(ctx context.Context, text string, now time.Time) (core.Expense, error)
}

// TextExtractor pulls text out of a receipt photo.
type TextExtractor interface {
	ParseImage(ctx context.Context, image []byte) (string, error)
}

// Options configures a Bot.
type Options struct {
	Token        string
	Categories   []string
	Location     *time.Location
	SummaryChart bool
}

type Bot struct {
	api          telegramAPI
	token        string
	ledger       ledger.Ledger
	parser       ExpenseParser
	ocr          TextExtractor
	categories   []string
	location     *time.Location
	summaryChart bool
	summaries    *cache.LRU[core.MonthSummary]

	// Overridable for tests.
	now      func() time.Time
	download func(ctx context.Context, url string) ([]byte, error)
}

func New(api telegramAPI, ledger ledger.Ledger, parser ExpenseParser, ocr TextExtractor, opts Options) *Bot {
	categories := opts.Categories
	if len(categories) == 0 {
		categories = core.DefaultCategories()
	}
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	return &Bot{
		api:          api,
		token:        opts.Token,
		ledger:       ledger,
		parser:       parser,
		ocr:          ocr,
		categories:   categories,
		location:     location,
		summaryChart: opts.SummaryChart,
		summaries:    cache.NewLRU[core.MonthSummary](12, 5*time.Minute),
		now:          func() time.Time { return time.Now().In(location) },
		download:     downloadFile,
	}
}

// Run consumes updates via long polling until the context ends.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	slog.InfoContext(ctx, "Bot started in polling mode")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("updates channel closed")
			}
			if err := b.HandleUpdate(ctx, update); err != nil {
				slog.ErrorContext(ctx, "Failed to handle update", "error", err)
			}
		}
	}
}

// HandleWebhook processes one webhook request body.
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("unmarshal update: %w", err)
	}
	return b.HandleUpdate(ctx, update)
}

// HandleUpdate routes a single update. Unsupported update types are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil {
		metrics.UpdatesTotal.WithLabelValues("other").Inc()
		return nil
	}

	switch {
	case msg.IsCommand():
		metrics.UpdatesTotal.WithLabelValues("command").Inc()
		return b.handleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		metrics.UpdatesTotal.WithLabelValues("photo").Inc()
		return b.handlePhoto(ctx, msg)
	case msg.Text != "":
		metrics.UpdatesTotal.WithLabelValues("text").Inc()
		return b.handleText(ctx, msg)
	default:
		metrics.UpdatesTotal.WithLabelValues("other").Inc()
		return nil
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.reply(msg.Chat.ID, replyWelcome)
	case "help":
		return b.reply(msg.Chat.ID, replyHelp)
	case "summary":
		return b.handleSummary(ctx, msg)
	case "categories":
		return b.reply(msg.Chat.ID, formatCategories(b.categories))
	case "warmup":
		return b.reply(msg.Chat.ID, replyWarmup)
	default:
		return b.reply(msg.Chat.ID, replyUnknownCommand)
	}
}

func (b *Bot) reply(chatID int64, text string) error {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func inputBy(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return ""
	}
	if msg.From.UserName != "" {
		return msg.From.UserName
	}
	return msg.From.FirstName
}

func downloadFile(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
