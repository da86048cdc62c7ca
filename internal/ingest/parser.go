package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"budgeteer/internal/core"
)

var errBadDate = errors.New("Invalid date format. Use YYYY-MM-DD or a common local format.")

// Draft is a normalized transaction candidate. The category is still a name;
// resolving it to an id (and creating it if missing) happens in the service
// layer.
type Draft struct {
	Row          int
	Date         core.Date
	Description  string
	Amount       core.Money
	CategoryName string
	Type         core.TransactionType
	Tag          string
}

// dateLayouts are tried in order after an ISO date-time. Day-first layouts
// come before month-first, matching the export formats of the banks this
// importer was built for.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"01-02-2006",
	"02.01.2006",
	"2006/01/02",
}

// ParseRows turns raw CSV records into drafts. Each row is parsed
// independently; every field error for a row is collected and the row is
// rejected as a whole, so one malformed line never aborts the batch. Errors
// come back as ordered human-readable strings ("Row 3: ...").
func ParseRows(rows []map[string]string, mapping map[string]string) ([]Draft, []string) {
	var drafts []Draft
	var errs []string

	for i, row := range rows {
		draft, rowErrs := parseRow(row, mapping)
		if len(rowErrs) > 0 {
			errs = append(errs, fmt.Sprintf("Row %d: %s", i+1, strings.Join(rowErrs, "; ")))
			continue
		}
		draft.Row = i + 1
		drafts = append(drafts, draft)
	}
	return drafts, errs
}

func parseRow(row map[string]string, mapping map[string]string) (Draft, []string) {
	var draft Draft
	var errs []string

	if raw, ok := cell(row, mapping[FieldDate]); !ok {
		errs = append(errs, "Missing date")
	} else if date, err := parseDate(raw); err != nil {
		errs = append(errs, err.Error())
	} else {
		draft.Date = date
	}

	if raw, ok := cell(row, mapping[FieldDescription]); !ok {
		errs = append(errs, "Missing description")
	} else {
		draft.Description = raw
	}

	if raw, ok := cell(row, mapping[FieldAmount]); !ok {
		errs = append(errs, "Missing amount")
	} else if amount, err := core.ParseAmount(raw); err != nil {
		switch {
		case err == core.ErrNonPositiveAmount:
			errs = append(errs, "Amount must be positive")
		default:
			errs = append(errs, "Invalid amount format")
		}
	} else {
		draft.Amount = amount
	}

	if raw, ok := cell(row, mapping[FieldCategory]); !ok {
		errs = append(errs, "Missing category")
	} else {
		name := core.NormalizeCategoryName(raw)
		if err := core.ValidateCategoryName(name); err != nil {
			errs = append(errs, err.Error())
		} else {
			draft.CategoryName = name
		}
	}

	if raw, ok := cell(row, mapping[FieldType]); !ok {
		errs = append(errs, "Missing transaction type")
	} else if canonical, ok := typeAliases[strings.ToLower(strings.TrimSpace(raw))]; !ok {
		errs = append(errs, "Invalid transaction type")
	} else {
		draft.Type = core.TransactionType(canonical)
	}

	if raw, ok := cell(row, mapping[FieldTag]); ok {
		draft.Tag = raw
	}

	return draft, errs
}

// cell fetches a trimmed value from a row; placeholder values spreadsheet
// tools emit for empty cells count as missing.
func cell(row map[string]string, column string) (string, bool) {
	if column == "" {
		return "", false
	}
	value := strings.TrimSpace(row[column])
	switch strings.ToLower(value) {
	case "", "nan", "nat", "none":
		return "", false
	}
	return value, true
}

// parseDate accepts an ISO date-time (truncated to its date) and then each
// supported layout in order.
func parseDate(raw string) (core.Date, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return core.DateOf(t), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return core.DateOf(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, errBadDate
}
