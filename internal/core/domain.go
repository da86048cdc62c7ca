package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"

	KindSavings GoalKind = "savings"
	KindDebt    GoalKind = "debt"

	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

type (
	TransactionType string
	GoalKind        string
	GoalStatus      string

	// Date is a calendar date (no time-of-day component).
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Account struct {
		ID             int64
		Username       string
		Email          string
		PasswordDigest string
		Salt           string
		FailedAttempts int
		LockoutUntil   *time.Time
		CreatedAt      time.Time
	}

	// PasswordHistoryEntry is an append-only credential record, newest first.
	PasswordHistoryEntry struct {
		ID        int64
		AccountID int64
		Digest    string
		Salt      string
		ChangedAt time.Time
	}

	Session struct {
		AccountID    int64
		Token        string
		LastActivity time.Time
		Timeout      time.Duration
	}

	// Category is a node in a self-referential tree. A nil OwnerID means the
	// category is a shared default visible to every user.
	Category struct {
		ID       int64
		ParentID *int64
		Name     string
		Type     TransactionType
		OwnerID  *int64
	}

	Transaction struct {
		ID          int64
		OwnerID     int64
		CategoryID  int64
		Date        Date
		Description string
		Amount      Money
		Type        TransactionType
		Tag         string
		GoalID      *int64
	}

	// Budget caps spending for one category over an inclusive date range.
	Budget struct {
		ID         int64
		OwnerID    int64
		CategoryID int64
		Limit      Money
		Start      Date
		End        Date
	}

	Goal struct {
		ID               int64
		OwnerID          int64
		Name             string
		Kind             GoalKind
		Target           Money
		TargetDate       Date
		Current          Money
		Progress         float64
		Status           GoalStatus
		LinkedCategoryID *int64
		Rank             *int
	}

	// DefaultRule maps a keyword to a category for auto-categorization.
	// A nil OwnerID means the rule is shared.
	DefaultRule struct {
		ID         int64
		OwnerID    *int64
		Keyword    string
		CategoryID int64
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date format")
	ErrInvalidAmount     = errors.New("invalid amount format")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidKind       = errors.New("invalid goal kind")
	ErrEmptyName         = errors.New("name cannot be empty")

	ErrParentNotFound   = errors.New("selected parent does not exist")
	ErrOwnParent        = errors.New("category cannot be its own parent")
	ErrCyclicHierarchy  = errors.New("cannot assign a child category as parent")
	ErrCrossOwnerParent = errors.New("parent belongs to another user")

	ErrOverlappingBudget = errors.New("budget already exists for this category in the selected period")
	ErrInvalidPeriod     = errors.New("invalid report period")
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a strict YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrNonPositiveAmount
	}
	return nil
}

// Units returns the major-unit value for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

func (t TransactionType) Validate() error {
	switch t {
	case TypeIncome, TypeExpense:
		return nil
	}
	return ErrInvalidType
}

func (k GoalKind) Validate() error {
	switch k {
	case KindSavings, KindDebt:
		return nil
	}
	return ErrInvalidKind
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Limit.Validate(); err != nil {
		return fmt.Errorf("limit: %w", err)
	}
	if err := b.Start.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if err := b.End.Validate(); err != nil {
		return fmt.Errorf("end date: %w", err)
	}
	if b.End.Before(b.Start.Time) {
		return errors.New("end date must be after start date")
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.Kind.Validate(); err != nil {
		return err
	}
	if err := g.Target.Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if err := g.TargetDate.Validate(); err != nil {
		return fmt.Errorf("target date: %w", err)
	}
	return nil
}

// Shared reports whether the category is a shared default.
func (c Category) Shared() bool {
	return c.OwnerID == nil
}
