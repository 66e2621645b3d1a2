package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"catatan/internal/core"
	ports "catatan/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Settings carries everything the Sheets client needs. Exactly one of
// ServiceAccountJSON or ServiceAccountFile must be set.
type Settings struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.ExpenseAppender = (*Client)(nil)
	_ ports.MonthReader     = (*Client)(nil)
)

func New(ctx context.Context, s Settings) (*Client, error) {
	if strings.TrimSpace(s.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(s.SheetName)
	if sheetName == "" {
		sheetName = "Catatan"
	}

	svc, err := newSheetsService(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: s.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using service account credentials.
func newSheetsService(ctx context.Context, s Settings) (*gsheet.Service, error) {
	var credentialsJSON []byte
	var err error

	switch {
	case strings.TrimSpace(s.ServiceAccountJSON) != "":
		credentialsJSON = []byte(s.ServiceAccountJSON)
	case strings.TrimSpace(s.ServiceAccountFile) != "":
		credentialsJSON, err = os.ReadFile(s.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Append adds the expense as a new row at the bottom of the sheet and returns
// the range the API reports for the written row.
func (c *Client) Append(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:G", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{expenseRow(e)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to append to sheet %s: %w", c.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// ListMonth scans the sheet and returns the expenses recorded in the given
// month. Rows that do not parse are skipped; the list is best-effort.
func (c *Client) ListMonth(ctx context.Context, year int, month time.Month) ([]core.Expense, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month: %d", month)
	}

	rng := fmt.Sprintf("%s!A:G", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	prefix := fmt.Sprintf("%04d-%02d", year, int(month))
	var out []core.Expense
	for _, row := range resp.Values {
		cols := toStrings(row)
		if len(cols) == 0 || !strings.HasPrefix(cols[0], prefix) {
			continue
		}
		e, ok := parseRow(cols)
		if !ok {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
