// Package google exports reports to a Google Sheet using a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"budgeteer/internal/core"
	ports "budgeteer/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ReportWriter = (*Client)(nil)

// Config carries the export destination and service account credentials.
// Exactly one of CredentialsFile and CredentialsJSON must be set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		var err error
		credentialsJSON, err = os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// WriteReport appends the report as a block of rows: a header with the period
// and totals, then one row per category. Returns the anchor row reference.
func (c *Client) WriteReport(ctx context.Context, report core.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	values := [][]any{
		{
			fmt.Sprintf("%s report", report.Period.Label()),
			report.Start.String(),
			report.End.String(),
			report.Income.Units(),
			report.Expenses.Units(),
			report.Savings.Units(),
		},
	}
	for _, entry := range report.ByCategory {
		values = append(values, []any{entry.Name, "", "", "", entry.Amount.Units(), ""})
	}

	writeRange := fmt.Sprintf("%s!A%d:F%d", c.sheetName, nextRow, nextRow+len(values)-1)
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write report to sheet %s: %w", c.sheetName, err)
	}

	ref := fmt.Sprintf("%s!A%d", c.sheetName, nextRow)
	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName,
		"ref", ref,
		"rows", len(values))
	return ref, nil
}
