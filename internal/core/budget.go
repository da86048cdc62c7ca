package core

import "sort"

// DefaultAlertThresholds are the spend percentages at which budget alerts
// fire.
var DefaultAlertThresholds = []int{75, 90, 100}

// BudgetAlert is a structured alert event for one crossed threshold.
type BudgetAlert struct {
	BudgetID   int64
	CategoryID int64
	Threshold  int
	Percentage float64
}

// PeriodsOverlap reports whether two inclusive date ranges intersect.
func PeriodsOverlap(aStart, aEnd, bStart, bEnd Date) bool {
	return !aStart.After(bEnd.Time) && !aEnd.Before(bStart.Time)
}

// FindOverlap returns the first budget among existing that belongs to the
// same owner and category and overlaps [start, end]. excludeID skips the
// budget being updated; pass 0 on creation.
func FindOverlap(existing []Budget, ownerID, categoryID int64, start, end Date, excludeID int64) (Budget, bool) {
	for _, b := range existing {
		if b.ID == excludeID {
			continue
		}
		if b.OwnerID != ownerID || b.CategoryID != categoryID {
			continue
		}
		if PeriodsOverlap(b.Start, b.End, start, end) {
			return b, true
		}
	}
	return Budget{}, false
}

// SpendPercentage computes spend against a limit as a percentage, 0 when the
// limit is not positive.
func SpendPercentage(totalSpent, limit Money) float64 {
	if limit.Cents <= 0 {
		return 0
	}
	return float64(totalSpent.Cents) / float64(limit.Cents) * 100
}

// EvaluateAlerts returns one alert per configured threshold at or below the
// current spend percentage, in ascending threshold order. The engine keeps no
// memory of previously fired thresholds; de-duplication belongs to the
// caller.
func EvaluateAlerts(b Budget, totalSpent Money, thresholds []int) []BudgetAlert {
	if len(thresholds) == 0 {
		thresholds = DefaultAlertThresholds
	}
	sorted := make([]int, len(thresholds))
	copy(sorted, thresholds)
	sort.Ints(sorted)

	pct := SpendPercentage(totalSpent, b.Limit)
	var alerts []BudgetAlert
	for _, threshold := range sorted {
		if pct >= float64(threshold) {
			alerts = append(alerts, BudgetAlert{
				BudgetID:   b.ID,
				CategoryID: b.CategoryID,
				Threshold:  threshold,
				Percentage: pct,
			})
		}
	}
	return alerts
}
