// Package export pushes journaled trades to a Google Sheets spreadsheet
// so the journal remains reviewable outside the app.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tradebook/internal/core"
)

type SheetClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Options configures the Sheets client. One of CredentialsJSON or
// CredentialsFile must carry a service account key.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

func NewSheetClient(ctx context.Context, opts Options) (*SheetClient, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Trades"
	}

	credentialsJSON, err := resolveCredentials(opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets export client created",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", sheetName)

	return &SheetClient{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func resolveCredentials(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendTrade appends one trade as a spreadsheet row and returns a
// reference to the written range.
func (c *SheetClient) AppendTrade(ctx context.Context, rec core.TradeRecord) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	row := []any{
		rec.Date,
		rec.Month,
		rec.Pair,
		rec.Net,
		rec.Trades,
		string(rec.Direction),
		rec.Session,
		string(rec.ClosedBy),
		floatOrEmpty(rec.RR),
		floatOrEmpty(rec.RiskPercent),
		rec.Emotion,
		rec.WithPlan,
		rec.Description,
		rec.SetupID,
		rec.ID,
	}

	rng := fmt.Sprintf("%s!A:O", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append trade to sheet %s: %w", c.sheetName, err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Trade exported to Google Sheets",
		"trade_id", rec.ID,
		"sheet_ref", ref)
	return ref, nil
}

func floatOrEmpty(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
