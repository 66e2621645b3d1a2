package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"catatan/internal/core"

	"google.golang.org/genai"
)

const defaultModel = "gemini-1.5-flash"

// Parser turns free-form Indonesian expense text into structured expenses
// using Gemini, with a rule-based fallback when the model is unavailable.
type Parser struct {
	client     *genai.Client
	model      string
	categories []string
}

func NewParser(ctx context.Context, apiKey, model string, categories []string) (*Parser, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Gemini API key")
	}
	if model == "" {
		model = defaultModel
	}
	if len(categories) == 0 {
		categories = core.DefaultCategories()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
		// API version v1 is what docs use for current Gemini models.
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Parser{
		client:     client,
		model:      model,
		categories: categories,
	}, nil
}

// ParseExpenseText parses a chat message describing one expense. On model
// failure it degrades to the rule-based parser instead of returning an error.
func (p *Parser) ParseExpenseText(ctx context.Context, text string, now time.Time) (core.Expense, error) {
	text = core.SanitizeInput(text)
	if strings.TrimSpace(text) == "" {
		return core.Expense{}, fmt.Errorf("empty expense text")
	}

	prompt := buildExpensePrompt(text, p.categories, now)
	raw, err := p.generate(ctx, prompt)
	if err != nil {
		slog.WarnContext(ctx, "Gemini parse failed, using rule-based fallback", "error", err)
		return FallbackParse(text, now, p.categories)
	}

	e, err := decodeExpense(raw, text, now, p.categories)
	if err != nil {
		slog.WarnContext(ctx, "Gemini response undecodable, using rule-based fallback",
			"error", err, "raw", raw)
		return FallbackParse(text, now, p.categories)
	}
	return e, nil
}

// ParseReceiptText parses OCR output of a shopping receipt. Receipts have no
// reliable sentence structure, so there is no rule-based fallback here; the
// caller decides how to degrade.
func (p *Parser) ParseReceiptText(ctx context.Context, ocrText string, now time.Time) (core.Expense, error) {
	ocrText = core.SanitizeInput(ocrText)
	if strings.TrimSpace(ocrText) == "" {
		return core.Expense{}, fmt.Errorf("empty receipt text")
	}

	prompt := buildReceiptPrompt(ocrText, p.categories, now)
	raw, err := p.generate(ctx, prompt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("generate receipt parse: %w", err)
	}

	e, err := decodeExpense(raw, ocrText, now, p.categories)
	if err != nil {
		return core.Expense{}, fmt.Errorf("decode receipt parse: %w", err)
	}
	return e, nil
}

func (p *Parser) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return rawText, nil
}

// parsedExpense is the JSON shape the prompts ask the model for.
type parsedExpense struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Date        string `json:"date"`
}

// decodeExpense turns the model output into a validated expense. The original
// text and reference time fill in whatever the model left blank.
func decodeExpense(raw, original string, now time.Time, categories []string) (core.Expense, error) {
	clean := cleanModelJSON(raw)

	var parsed parsedExpense
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return core.Expense{}, fmt.Errorf("unmarshal JSON: %w", err)
	}

	if parsed.Amount <= 0 {
		amount, err := core.ParseAmount(original)
		if err != nil {
			return core.Expense{}, fmt.Errorf("no usable amount in model output or text")
		}
		parsed.Amount = amount
	}
	if parsed.Amount > core.MaxAmount {
		return core.Expense{}, fmt.Errorf("amount %d exceeds maximum", parsed.Amount)
	}

	date := core.ResolveDate(original, now)
	if parsed.Date != "" {
		if d, err := time.Parse("2006-01-02", parsed.Date); err == nil {
			date = d
		}
	}

	location := strings.TrimSpace(parsed.Location)
	if location == "" {
		location = core.ExtractLocation(original)
	}

	e := core.Expense{
		Date:        date,
		Description: core.CleanDescription(parsed.Description),
		Amount:      core.Money{Rupiah: parsed.Amount},
		Category:    core.NormalizeCategory(parsed.Category, categories),
		Location:    location,
		Source:      core.SourceText,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("decoded expense invalid: %w", err)
	}
	return e, nil
}

// FallbackParse extracts an expense using regex rules only. Used when the
// model is unreachable or returns garbage.
func FallbackParse(text string, now time.Time, categories []string) (core.Expense, error) {
	text = core.SanitizeInput(text)

	amount, err := core.ParseAmount(text)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse amount: %w", err)
	}

	location := core.ExtractLocation(text)
	e := core.Expense{
		Date:        core.ResolveDate(text, now),
		Description: core.CleanDescription(text),
		Amount:      core.Money{Rupiah: amount},
		Category:    core.MatchCategory(text, location, categories),
		Location:    location,
		Source:      core.SourceText,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("fallback expense invalid: %w", err)
	}
	return e, nil
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// If there is still junk around the JSON object, keep only the first '{'
	// to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
