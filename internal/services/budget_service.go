package services

import (
	"context"
	"database/sql"
	"fmt"

	"budgeteer/internal/amqp"
	"budgeteer/internal/core"
	"budgeteer/internal/storage"
)

// BudgetService manages spending caps. At most one budget may cover a
// category on any given day, so create and update both run the overlap check
// against the owner's existing budgets.
type BudgetService struct {
	db       *sql.DB
	notifier *Notifier
}

func NewBudgetService(db *sql.DB, notifier *Notifier) *BudgetService {
	return &BudgetService{db: db, notifier: notifier}
}

// BudgetStatus pairs a budget with its current spend for list views.
type BudgetStatus struct {
	Budget     core.Budget
	Spent      core.Money
	Percentage float64
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.checkCategory(ctx, b.OwnerID, b.CategoryID); err != nil {
		return core.Budget{}, err
	}
	if err := s.checkOverlap(ctx, b, 0); err != nil {
		return core.Budget{}, err
	}
	return storage.NewBudgetRepo(s.db).Create(ctx, b)
}

func (s *BudgetService) Get(ctx context.Context, ownerID, id int64) (BudgetStatus, error) {
	b, err := storage.NewBudgetRepo(s.db).Get(ctx, id, ownerID)
	if err != nil {
		return BudgetStatus{}, err
	}
	return s.status(ctx, b)
}

// List returns the owner's budgets with their current spend.
func (s *BudgetService) List(ctx context.Context, ownerID int64) ([]BudgetStatus, error) {
	budgets, err := storage.NewBudgetRepo(s.db).List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		st, err := s.status(ctx, b)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func (s *BudgetService) Update(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.checkCategory(ctx, b.OwnerID, b.CategoryID); err != nil {
		return core.Budget{}, err
	}
	if err := s.checkOverlap(ctx, b, b.ID); err != nil {
		return core.Budget{}, err
	}
	if err := storage.NewBudgetRepo(s.db).Update(ctx, b); err != nil {
		return core.Budget{}, err
	}
	// A lowered limit can put existing spend over a threshold.
	if err := s.CheckAlerts(ctx, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// CheckAlerts re-evaluates the budget's thresholds against its current spend
// and notifies for any newly crossed ones. Already-delivered alerts are
// filtered out by the notifier.
func (s *BudgetService) CheckAlerts(ctx context.Context, b core.Budget) error {
	spent, err := storage.NewTransactionRepo(s.db).SumExpenses(ctx, b.OwnerID, b.CategoryID, b.Start, b.End)
	if err != nil {
		return err
	}
	alerts := core.EvaluateAlerts(b, spent, nil)
	if len(alerts) == 0 {
		return nil
	}

	categoryName := "Unknown"
	if category, err := storage.NewCategoryRepo(s.db).GetByID(ctx, b.CategoryID); err == nil {
		categoryName = category.Name
	}
	for _, alert := range alerts {
		if _, err := s.notifier.BudgetAlert(ctx, b.OwnerID, alert, categoryName); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the budget and clears its delivered alerts so a future
// budget reusing the id range cannot be silenced by stale records.
func (s *BudgetService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := storage.NewBudgetRepo(s.db).Delete(ctx, id, ownerID); err != nil {
		return err
	}
	return storage.NewNotificationRepo(s.db).DeleteForSubject(ctx, ownerID, amqp.KindBudgetAlert, id)
}

func (s *BudgetService) checkCategory(ctx context.Context, ownerID, categoryID int64) error {
	category, err := storage.NewCategoryRepo(s.db).GetByID(ctx, categoryID)
	if err != nil {
		return ErrCategoryNotFound
	}
	if !visibleTo(category, ownerID) {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *BudgetService) checkOverlap(ctx context.Context, b core.Budget, excludeID int64) error {
	existing, err := storage.NewBudgetRepo(s.db).ListForCategory(ctx, b.OwnerID, b.CategoryID)
	if err != nil {
		return err
	}
	if clash, found := core.FindOverlap(existing, b.OwnerID, b.CategoryID, b.Start, b.End, excludeID); found {
		return fmt.Errorf("%w: %s to %s", core.ErrOverlappingBudget, clash.Start, clash.End)
	}
	return nil
}

func (s *BudgetService) status(ctx context.Context, b core.Budget) (BudgetStatus, error) {
	spent, err := storage.NewTransactionRepo(s.db).SumExpenses(ctx, b.OwnerID, b.CategoryID, b.Start, b.End)
	if err != nil {
		return BudgetStatus{}, err
	}
	return BudgetStatus{
		Budget:     b,
		Spent:      spent,
		Percentage: core.SpendPercentage(spent, b.Limit),
	}, nil
}
