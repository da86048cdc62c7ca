package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgeteer/internal/core"
)

func fullMapping() map[string]string {
	return map[string]string{
		FieldDate:        "Date",
		FieldDescription: "Description",
		FieldAmount:      "Amount",
		FieldCategory:    "Category",
		FieldType:        "Type",
		FieldTag:         "Tag",
	}
}

func TestParseRows(t *testing.T) {
	rows := []map[string]string{
		{
			"Date": "2026-08-01", "Description": "Salary August", "Amount": "2500.00",
			"Category": "Salary", "Type": "credit", "Tag": "work",
		},
		{
			"Date": "19/08/2026", "Description": "Groceries", "Amount": "(45.20)",
			"Category": "Food", "Type": "debit",
		},
		{
			"Date": "not-a-date", "Description": "", "Amount": "0",
			"Category": "12345", "Type": "transfer",
		},
	}

	drafts, errs := ParseRows(rows, fullMapping())
	require.Len(t, drafts, 2)
	require.Len(t, errs, 1)

	salary := drafts[0]
	assert.Equal(t, "2026-08-01", salary.Date.String())
	assert.Equal(t, "Salary August", salary.Description)
	assert.Equal(t, int64(250000), salary.Amount.Cents)
	assert.Equal(t, core.TypeIncome, salary.Type)
	assert.Equal(t, "work", salary.Tag)

	groceries := drafts[1]
	assert.Equal(t, "2026-08-19", groceries.Date.String(), "day-first format wins")
	assert.Equal(t, int64(4520), groceries.Amount.Cents, "parenthesized amounts stored absolute")
	assert.Equal(t, core.TypeExpense, groceries.Type)
	assert.Empty(t, groceries.Tag)

	assert.Contains(t, errs[0], "Row 3:")
	assert.Contains(t, errs[0], "Invalid date format")
	assert.Contains(t, errs[0], "Missing description")
	assert.Contains(t, errs[0], "Amount must be positive")
	assert.Contains(t, errs[0], "only numbers")
	assert.Contains(t, errs[0], "Invalid transaction type")
}

func TestParseRowsMissingFields(t *testing.T) {
	rows := []map[string]string{{"Date": "2026-08-01"}}

	drafts, errs := ParseRows(rows, fullMapping())
	assert.Empty(t, drafts)
	require.Len(t, errs, 1)
	for _, want := range []string{"Missing description", "Missing amount", "Missing category", "Missing transaction type"} {
		assert.Contains(t, errs[0], want)
	}
}

func TestParseRowsPlaceholderValuesAreMissing(t *testing.T) {
	rows := []map[string]string{
		{
			"Date": "nan", "Description": "Coffee", "Amount": "3.50",
			"Category": "Food", "Type": "debit", "Tag": "None",
		},
	}

	drafts, errs := ParseRows(rows, fullMapping())
	assert.Empty(t, drafts)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Missing date")
}

func TestParseRowsDateFormats(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2026-08-19", "2026-08-19"},
		{"2026-08-19T14:30:00", "2026-08-19"},
		{"19/08/2026", "2026-08-19"},
		{"19-08-2026", "2026-08-19"},
		{"19.08.2026", "2026-08-19"},
		{"2026/08/19", "2026-08-19"},
	}
	for _, tc := range cases {
		rows := []map[string]string{
			{
				"Date": tc.in, "Description": "x", "Amount": "1.00",
				"Category": "Misc", "Type": "debit",
			},
		}
		drafts, errs := ParseRows(rows, fullMapping())
		require.Emptyf(t, errs, "date %q", tc.in)
		require.Len(t, drafts, 1)
		assert.Equal(t, tc.want, drafts[0].Date.String())
	}
}
