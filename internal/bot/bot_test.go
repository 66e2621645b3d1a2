package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"catatan/internal/core"
)

var botTestRef = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

type fakeAPI struct {
	sent    []tgbotapi.Chattable
	nextID  int
	fileErr error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error) {
	if f.fileErr != nil {
		return tgbotapi.File{}, f.fileErr
	}
	return tgbotapi.File{FileID: config.FileID, FilePath: "photos/file_1.jpg"}, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return nil
}

// texts returns the plain text of every sent message or edit, in order.
func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.sent {
		switch v := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, v.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, v.Text)
		case tgbotapi.PhotoConfig:
			out = append(out, "[photo]")
		}
	}
	return out
}

type fakeParser struct {
	expense core.Expense
	err     error
}

func (f *fakeParser) ParseExpenseText(_ context.Context, _ string, _ time.Time) (core.Expense, error) {
	return f.expense, f.err
}

func (f *fakeParser) ParseReceiptText(_ context.Context, _ string, _ time.Time) (core.Expense, error) {
	return f.expense, f.err
}

type fakeLedger struct {
	appended  []core.Expense
	listed    []core.Expense
	listCalls int
	err       error
}

func (f *fakeLedger) Append(_ context.Context, e core.Expense) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, e)
	return fmt.Sprintf("row:%d", len(f.appended)), nil
}

func (f *fakeLedger) ListMonth(_ context.Context, _ int, _ time.Month) ([]core.Expense, error) {
	f.listCalls++
	return f.listed, f.err
}

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ParseImage(_ context.Context, _ []byte) (string, error) {
	return f.text, f.err
}

func parsedExpenseFixture() core.Expense {
	return core.Expense{
		Date:        time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Description: "Ayam goreng",
		Amount:      core.Money{Rupiah: 25000},
		Category:    "Food & Dining",
		Location:    "Warteg",
		Source:      core.SourceText,
	}
}

func newTestBot(api *fakeAPI, l *fakeLedger, p *fakeParser, o *fakeOCR) *Bot {
	b := New(api, l, p, o, Options{Token: "123:abc"})
	b.now = func() time.Time { return botTestRef }
	b.download = func(_ context.Context, _ string) ([]byte, error) {
		return []byte{0xFF, 0xD8}, nil
	}
	return b
}

func commandUpdate(cmd string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: cmd,
		Chat: &tgbotapi.Chat{ID: 42},
		From: &tgbotapi.User{UserName: "budi"},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(cmd)},
		},
	}}
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: 42},
		From: &tgbotapi.User{UserName: "budi"},
	}}
}

func photoUpdate() tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 42},
		From: &tgbotapi.User{FirstName: "Budi"},
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90},
			{FileID: "large", Width: 800},
		},
	}}
}

func TestHandleCommands(t *testing.T) {
	cases := []struct {
		cmd  string
		want string
	}{
		{"/start", "Halo"},
		{"/help", "/summary"},
		{"/warmup", "Bot aktif"},
		{"/categories", "Food & Dining"},
		{"/nonsense", "tidak dikenal"},
	}
	for _, tc := range cases {
		t.Run(tc.cmd, func(t *testing.T) {
			api := &fakeAPI{}
			b := newTestBot(api, &fakeLedger{}, &fakeParser{}, &fakeOCR{})

			if err := b.HandleUpdate(context.Background(), commandUpdate(tc.cmd)); err != nil {
				t.Fatalf("HandleUpdate failed: %v", err)
			}
			texts := api.texts()
			if len(texts) != 1 || !strings.Contains(texts[0], tc.want) {
				t.Fatalf("expected one reply containing %q, got %v", tc.want, texts)
			}
		})
	}
}

func TestHandleTextRecordsExpense(t *testing.T) {
	api := &fakeAPI{}
	l := &fakeLedger{}
	b := newTestBot(api, l, &fakeParser{expense: parsedExpenseFixture()}, &fakeOCR{})

	if err := b.HandleUpdate(context.Background(), textUpdate("ayam goreng di warteg 25rb")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}

	if len(l.appended) != 1 {
		t.Fatalf("expected 1 append, got %d", len(l.appended))
	}
	if l.appended[0].InputBy != "budi" {
		t.Fatalf("expected input_by from username, got %q", l.appended[0].InputBy)
	}

	texts := api.texts()
	if len(texts) != 2 {
		t.Fatalf("expected processing + confirmation, got %v", texts)
	}
	if texts[0] != replyProcessing {
		t.Fatalf("expected processing message first, got %q", texts[0])
	}
	for _, want := range []string{"dicatat", "Ayam goreng", "Rp 25,000", "Food & Dining", "Warteg"} {
		if !strings.Contains(texts[1], want) {
			t.Fatalf("confirmation missing %q: %q", want, texts[1])
		}
	}
}

func TestHandleTextParseFailure(t *testing.T) {
	api := &fakeAPI{}
	l := &fakeLedger{}
	b := newTestBot(api, l, &fakeParser{err: errors.New("no amount")}, &fakeOCR{})

	if err := b.HandleUpdate(context.Background(), textUpdate("halo apa kabar")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}
	if len(l.appended) != 0 {
		t.Fatal("nothing should be appended on parse failure")
	}
	texts := api.texts()
	if len(texts) != 2 || !strings.Contains(texts[1], "tidak bisa memahami") {
		t.Fatalf("expected parse-failure edit, got %v", texts)
	}
}

func TestHandleTextSaveFailure(t *testing.T) {
	api := &fakeAPI{}
	l := &fakeLedger{err: errors.New("sheets down")}
	b := newTestBot(api, l, &fakeParser{expense: parsedExpenseFixture()}, &fakeOCR{})

	if err := b.HandleUpdate(context.Background(), textUpdate("ayam 25rb")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}
	texts := api.texts()
	if len(texts) != 2 || !strings.Contains(texts[1], "gagal disimpan") {
		t.Fatalf("expected save-failure edit, got %v", texts)
	}
}

func TestHandlePhotoRecordsExpense(t *testing.T) {
	api := &fakeAPI{}
	l := &fakeLedger{}
	var gotURL string
	b := newTestBot(api, l,
		&fakeParser{expense: parsedExpenseFixture()},
		&fakeOCR{text: "INDOMARET\nTOTAL 52.500"})
	b.download = func(_ context.Context, url string) ([]byte, error) {
		gotURL = url
		return []byte{0xFF, 0xD8}, nil
	}

	if err := b.HandleUpdate(context.Background(), photoUpdate()); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}

	if len(l.appended) != 1 {
		t.Fatalf("expected 1 append, got %d", len(l.appended))
	}
	if l.appended[0].Source != core.SourcePhoto {
		t.Fatalf("expected photo source, got %q", l.appended[0].Source)
	}
	if l.appended[0].InputBy != "Budi" {
		t.Fatalf("expected first name fallback, got %q", l.appended[0].InputBy)
	}
	if !strings.Contains(gotURL, "/file/bot123:abc/photos/file_1.jpg") {
		t.Fatalf("unexpected download URL %q", gotURL)
	}
}

func TestHandlePhotoOCRFailure(t *testing.T) {
	api := &fakeAPI{}
	l := &fakeLedger{}
	b := newTestBot(api, l, &fakeParser{}, &fakeOCR{err: errors.New("no text")})

	if err := b.HandleUpdate(context.Background(), photoUpdate()); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}
	if len(l.appended) != 0 {
		t.Fatal("nothing should be appended on OCR failure")
	}
	texts := api.texts()
	if len(texts) != 2 || !strings.Contains(texts[1], "tidak bisa membaca") {
		t.Fatalf("expected OCR-failure edit, got %v", texts)
	}
}

func TestHandleSummary(t *testing.T) {
	api := &fakeAPI{}
	e := parsedExpenseFixture()
	other := parsedExpenseFixture()
	other.Category = "Transportation"
	other.Amount = core.Money{Rupiah: 20000}
	l := &fakeLedger{listed: []core.Expense{e, other}}
	b := newTestBot(api, l, &fakeParser{}, &fakeOCR{})

	if err := b.HandleUpdate(context.Background(), commandUpdate("/summary")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}

	texts := api.texts()
	if len(texts) != 1 {
		t.Fatalf("expected 1 reply without chart, got %v", texts)
	}
	for _, want := range []string{"Ringkasan Maret 2025", "Rp 45,000", "2 transaksi", "Food & Dining: Rp 25,000"} {
		if !strings.Contains(texts[0], want) {
			t.Fatalf("summary missing %q: %q", want, texts[0])
		}
	}
}

func TestHandleSummaryWithChart(t *testing.T) {
	api := &fakeAPI{}
	l := &fakeLedger{listed: []core.Expense{parsedExpenseFixture()}}
	b := newTestBot(api, l, &fakeParser{}, &fakeOCR{})
	b.summaryChart = true

	if err := b.HandleUpdate(context.Background(), commandUpdate("/summary")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}
	texts := api.texts()
	if len(texts) != 2 || texts[1] != "[photo]" {
		t.Fatalf("expected summary text plus chart photo, got %v", texts)
	}
}

func TestHandleSummaryEmpty(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeLedger{}, &fakeParser{}, &fakeOCR{})
	b.summaryChart = true

	if err := b.HandleUpdate(context.Background(), commandUpdate("/summary")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}
	texts := api.texts()
	if len(texts) != 1 || !strings.Contains(texts[0], "Belum ada pengeluaran") {
		t.Fatalf("expected empty-month reply, got %v", texts)
	}
}

func TestSummaryCacheInvalidatedByNewExpense(t *testing.T) {
	api := &fakeAPI{}
	l := &fakeLedger{listed: []core.Expense{parsedExpenseFixture()}}
	b := newTestBot(api, l, &fakeParser{expense: parsedExpenseFixture()}, &fakeOCR{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := b.HandleUpdate(ctx, commandUpdate("/summary")); err != nil {
			t.Fatalf("HandleUpdate failed: %v", err)
		}
	}
	if l.listCalls != 1 {
		t.Fatalf("expected second summary to be served from cache, got %d ledger reads", l.listCalls)
	}

	if err := b.HandleUpdate(ctx, textUpdate("ayam 25rb")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}
	if err := b.HandleUpdate(ctx, commandUpdate("/summary")); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}
	if l.listCalls != 2 {
		t.Fatalf("expected cache invalidation after recording, got %d ledger reads", l.listCalls)
	}
}

func TestHandleWebhook(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeLedger{}, &fakeParser{}, &fakeOCR{})

	body := []byte(`{"update_id":1,"message":{"message_id":10,"chat":{"id":42},"text":"/warmup","entities":[{"type":"bot_command","offset":0,"length":7}]}}`)
	if err := b.HandleWebhook(context.Background(), body); err != nil {
		t.Fatalf("HandleWebhook failed: %v", err)
	}
	texts := api.texts()
	if len(texts) != 1 || !strings.Contains(texts[0], "Bot aktif") {
		t.Fatalf("expected warmup reply, got %v", texts)
	}

	if err := b.HandleWebhook(context.Background(), []byte("not json")); err == nil {
		t.Fatal("expected error for invalid body")
	}
}

func TestIgnoresNonMessageUpdates(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeLedger{}, &fakeParser{}, &fakeOCR{})

	if err := b.HandleUpdate(context.Background(), tgbotapi.Update{}); err != nil {
		t.Fatalf("HandleUpdate failed: %v", err)
	}
	if len(api.sent) != 0 {
		t.Fatalf("expected no replies, got %v", api.texts())
	}
}
