package core

import "testing"

func TestPeriodsOverlap(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     Date
		want                           bool
	}{
		{
			name:   "candidate overlaps tail of existing",
			aStart: NewDate(2026, 1, 1), aEnd: NewDate(2026, 1, 31),
			bStart: NewDate(2026, 1, 20), bEnd: NewDate(2026, 2, 5),
			want: true,
		},
		{
			name:   "adjacent month does not overlap",
			aStart: NewDate(2026, 1, 1), aEnd: NewDate(2026, 1, 31),
			bStart: NewDate(2026, 2, 1), bEnd: NewDate(2026, 2, 28),
			want: false,
		},
		{
			name:   "shared boundary day overlaps",
			aStart: NewDate(2026, 1, 1), aEnd: NewDate(2026, 1, 31),
			bStart: NewDate(2026, 1, 31), bEnd: NewDate(2026, 2, 28),
			want: true,
		},
		{
			name:   "candidate fully inside existing",
			aStart: NewDate(2026, 1, 1), aEnd: NewDate(2026, 12, 31),
			bStart: NewDate(2026, 6, 1), bEnd: NewDate(2026, 6, 30),
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PeriodsOverlap(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			// Overlap is symmetric.
			if got := PeriodsOverlap(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd); got != tc.want {
				t.Fatalf("reversed: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFindOverlap(t *testing.T) {
	existing := []Budget{
		{ID: 1, OwnerID: 7, CategoryID: 3, Start: NewDate(2026, 1, 1), End: NewDate(2026, 1, 31)},
		{ID: 2, OwnerID: 7, CategoryID: 4, Start: NewDate(2026, 1, 1), End: NewDate(2026, 1, 31)},
	}

	t.Run("same category conflicts", func(t *testing.T) {
		got, ok := FindOverlap(existing, 7, 3, NewDate(2026, 1, 20), NewDate(2026, 2, 5), 0)
		if !ok || got.ID != 1 {
			t.Fatalf("got (%v, %v), want budget 1", got, ok)
		}
	})

	t.Run("other category does not conflict", func(t *testing.T) {
		if _, ok := FindOverlap(existing, 7, 5, NewDate(2026, 1, 1), NewDate(2026, 1, 31), 0); ok {
			t.Fatal("unexpected overlap")
		}
	})

	t.Run("other owner does not conflict", func(t *testing.T) {
		if _, ok := FindOverlap(existing, 8, 3, NewDate(2026, 1, 1), NewDate(2026, 1, 31), 0); ok {
			t.Fatal("unexpected overlap")
		}
	})

	t.Run("update excludes its own row", func(t *testing.T) {
		if _, ok := FindOverlap(existing, 7, 3, NewDate(2026, 1, 5), NewDate(2026, 1, 25), 1); ok {
			t.Fatal("unexpected overlap against the budget being updated")
		}
	})
}

func TestSpendPercentage(t *testing.T) {
	if got := SpendPercentage(Money{Cents: 5000}, Money{Cents: 10000}); got != 50 {
		t.Fatalf("got %v, want 50", got)
	}
	if got := SpendPercentage(Money{Cents: 5000}, Money{}); got != 0 {
		t.Fatalf("zero limit: got %v, want 0", got)
	}
}

func TestEvaluateAlerts(t *testing.T) {
	budget := Budget{ID: 9, CategoryID: 3, Limit: Money{Cents: 10000}}

	cases := []struct {
		name       string
		spent      int64
		thresholds []int
		want       []int
	}{
		{name: "below all thresholds", spent: 7000, want: nil},
		{name: "first threshold", spent: 7500, want: []int{75}},
		{name: "two thresholds", spent: 9200, want: []int{75, 90}},
		{name: "over the limit fires everything", spent: 11000, want: []int{75, 90, 100}},
		{name: "custom thresholds sorted ascending", spent: 6000, thresholds: []int{50, 25}, want: []int{25, 50}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alerts := EvaluateAlerts(budget, Money{Cents: tc.spent}, tc.thresholds)
			if len(alerts) != len(tc.want) {
				t.Fatalf("got %d alerts, want %d", len(alerts), len(tc.want))
			}
			for i, alert := range alerts {
				if alert.Threshold != tc.want[i] {
					t.Errorf("alert %d threshold = %d, want %d", i, alert.Threshold, tc.want[i])
				}
				if alert.BudgetID != budget.ID || alert.CategoryID != budget.CategoryID {
					t.Errorf("alert %d carries wrong ids: %+v", i, alert)
				}
			}
		})
	}
}
