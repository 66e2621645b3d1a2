package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"catatan/internal/charts"
	"catatan/internal/core"
	"catatan/internal/metrics"
)

// handleText parses a free-text expense message and records it.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) error {
	processing, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, replyProcessing))
	if err != nil {
		return fmt.Errorf("send processing message: %w", err)
	}

	expense, err := b.parser.ParseExpenseText(ctx, msg.Text, b.now())
	if err != nil {
		metrics.ParseFailuresTotal.WithLabelValues("text").Inc()
		slog.WarnContext(ctx, "Could not parse expense text",
			"chat_id", msg.Chat.ID, "error", err)
		return b.edit(msg.Chat.ID, processing.MessageID, replyParseFailed)
	}
	expense.InputBy = inputBy(msg)

	return b.record(ctx, msg.Chat.ID, processing.MessageID, expense)
}

// handlePhoto downloads the largest photo size, runs OCR and parses the
// receipt text.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) error {
	processing, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, replyProcessingPhoto))
	if err != nil {
		return fmt.Errorf("send processing message: %w", err)
	}

	photo := msg.Photo[len(msg.Photo)-1]
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: photo.FileID})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get photo file", "error", err)
		return b.edit(msg.Chat.ID, processing.MessageID, replyPhotoFailed)
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", b.token, file.FilePath)
	image, err := b.download(ctx, url)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to download photo", "error", err)
		return b.edit(msg.Chat.ID, processing.MessageID, replyPhotoFailed)
	}

	text, err := b.ocr.ParseImage(ctx, image)
	if err != nil {
		metrics.ParseFailuresTotal.WithLabelValues("ocr").Inc()
		slog.WarnContext(ctx, "OCR failed", "chat_id", msg.Chat.ID, "error", err)
		return b.edit(msg.Chat.ID, processing.MessageID, replyOCRFailed)
	}

	expense, err := b.parser.ParseReceiptText(ctx, text, b.now())
	if err != nil {
		metrics.ParseFailuresTotal.WithLabelValues("receipt").Inc()
		slog.WarnContext(ctx, "Could not parse receipt",
			"chat_id", msg.Chat.ID, "error", err)
		return b.edit(msg.Chat.ID, processing.MessageID, replyReceiptFailed)
	}
	expense.Source = core.SourcePhoto
	expense.InputBy = inputBy(msg)

	return b.record(ctx, msg.Chat.ID, processing.MessageID, expense)
}

// record appends the expense to the ledger and confirms to the user by
// editing the processing message.
func (b *Bot) record(ctx context.Context, chatID int64, messageID int, expense core.Expense) error {
	ref, err := b.ledger.Append(ctx, expense)
	if err != nil {
		metrics.LedgerAppendsTotal.WithLabelValues("error").Inc()
		slog.ErrorContext(ctx, "Failed to append expense",
			"chat_id", chatID, "error", err)
		return b.edit(chatID, messageID, replySaveFailed)
	}

	metrics.LedgerAppendsTotal.WithLabelValues("ok").Inc()
	b.summaries.Delete(monthKey(expense.Date))
	slog.InfoContext(ctx, "Expense recorded",
		"chat_id", chatID,
		"row_ref", ref,
		"description", expense.Description,
		"amount", expense.Amount.Rupiah,
		"category", expense.Category)

	return b.edit(chatID, messageID, formatSaved(expense))
}

// handleSummary replies with this month's totals and, when enabled, a chart.
// Summaries are cached for a few minutes; recording an expense invalidates
// its month so a /summary right after never shows a stale total.
func (b *Bot) handleSummary(ctx context.Context, msg *tgbotapi.Message) error {
	now := b.now()
	key := monthKey(now)

	sum, ok := b.summaries.Get(key)
	if !ok {
		expenses, err := b.ledger.ListMonth(ctx, now.Year(), now.Month())
		if err != nil {
			slog.ErrorContext(ctx, "Failed to list month expenses", "error", err)
			return b.reply(msg.Chat.ID, replySummaryFailed)
		}
		sum = core.BuildMonthSummary(expenses, now.Year(), now.Month())
		b.summaries.Set(key, sum)
	}
	if err := b.reply(msg.Chat.ID, formatSummary(sum)); err != nil {
		return err
	}

	if !b.summaryChart || sum.Count == 0 {
		return nil
	}
	png, err := charts.RenderMonthSummary(sum)
	if err != nil || png == nil {
		if err != nil {
			slog.WarnContext(ctx, "Failed to render summary chart", "error", err)
		}
		return nil
	}
	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  "summary.png",
		Bytes: png,
	})
	if _, err := b.api.Send(photo); err != nil {
		slog.WarnContext(ctx, "Failed to send summary chart", "error", err)
	}
	return nil
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

func (b *Bot) edit(chatID int64, messageID int, text string) error {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}
