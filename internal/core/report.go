package core

import "sort"

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodCustom  Period = "custom"
)

type (
	Period string

	CategoryAmount struct {
		Name   string
		Amount Money
	}

	// Report is the aggregation contract handed to the export collaborator.
	Report struct {
		Period       Period
		Start        Date
		End          Date
		Income       Money
		Expenses     Money
		Savings      Money
		ByCategory   []CategoryAmount
		Transactions []Transaction
	}
)

// PeriodRange resolves a report period to an inclusive date range. Weekly
// runs Monday through Sunday of today's week; monthly and yearly cover the
// calendar month and year; custom requires both bounds.
func PeriodRange(p Period, today Date, customStart, customEnd Date) (Date, Date, error) {
	switch p {
	case PeriodWeekly:
		sinceMonday := (int(today.Weekday()) + 6) % 7
		start := Date{Time: today.AddDate(0, 0, -sinceMonday)}
		end := Date{Time: start.AddDate(0, 0, 6)}
		return start, end, nil
	case PeriodMonthly:
		start := NewDate(today.Year(), int(today.Month()), 1)
		end := Date{Time: start.AddDate(0, 1, -1)}
		return start, end, nil
	case PeriodYearly:
		return NewDate(today.Year(), 1, 1), NewDate(today.Year(), 12, 31), nil
	case PeriodCustom:
		if customStart.IsZero() || customEnd.IsZero() {
			return Date{}, Date{}, ErrInvalidPeriod
		}
		return customStart, customEnd, nil
	}
	return Date{}, Date{}, ErrInvalidPeriod
}

// BuildReport aggregates transactions into totals and a per-category
// breakdown. categoryName resolves display names; unknown categories are
// grouped under "Unknown". The breakdown is sorted by name for a stable
// export order.
func BuildReport(p Period, start, end Date, txns []Transaction, categoryName func(int64) string) Report {
	report := Report{
		Period:       p,
		Start:        start,
		End:          end,
		Transactions: txns,
	}

	byName := make(map[string]int64)
	for _, t := range txns {
		switch t.Type {
		case TypeIncome:
			report.Income.Cents += t.Amount.Cents
		case TypeExpense:
			report.Expenses.Cents += t.Amount.Cents
		}

		name := ""
		if categoryName != nil {
			name = categoryName(t.CategoryID)
		}
		if name == "" {
			name = "Unknown"
		}
		byName[name] += t.Amount.Cents
	}
	report.Savings.Cents = report.Income.Cents - report.Expenses.Cents

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		report.ByCategory = append(report.ByCategory, CategoryAmount{
			Name:   name,
			Amount: Money{Cents: byName[name]},
		})
	}
	return report
}

// Label renders the period for report headers.
func (p Period) Label() string {
	if p == "" {
		return ""
	}
	s := string(p)
	return string(s[0]-'a'+'A') + s[1:]
}
