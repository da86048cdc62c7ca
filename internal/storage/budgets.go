package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgeteer/internal/core"
	"budgeteer/internal/dbx"
)

type BudgetRepo struct {
	q dbx.DBTX
}

func NewBudgetRepo(q dbx.DBTX) *BudgetRepo {
	return &BudgetRepo{q: q}
}

func scanBudget(scan func(...any) error) (core.Budget, error) {
	var b core.Budget
	var start, end string
	if err := scan(&b.ID, &b.OwnerID, &b.CategoryID, &b.Limit.Cents, &start, &end); err != nil {
		return core.Budget{}, err
	}
	var err error
	if b.Start, err = core.ParseDate(start); err != nil {
		return core.Budget{}, fmt.Errorf("stored start date %q: %w", start, err)
	}
	if b.End, err = core.ParseDate(end); err != nil {
		return core.Budget{}, fmt.Errorf("stored end date %q: %w", end, err)
	}
	return b, nil
}

func (r *BudgetRepo) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category_id, limit_cents, start_date, end_date) VALUES (?, ?, ?, ?, ?)`,
		b.OwnerID, b.CategoryID, b.Limit.Cents, b.Start.String(), b.End.String())
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget id: %w", err)
	}
	return b, nil
}

func (r *BudgetRepo) Get(ctx context.Context, id, ownerID int64) (core.Budget, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT budget_id, user_id, category_id, limit_cents, start_date, end_date
		 FROM budgets WHERE budget_id = ? AND user_id = ?`, id, ownerID)
	b, err := scanBudget(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepo) List(ctx context.Context, ownerID int64) ([]core.Budget, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT budget_id, user_id, category_id, limit_cents, start_date, end_date
		 FROM budgets WHERE user_id = ? ORDER BY start_date, budget_id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// ListForCategory returns the owner's budgets for one category; used to find
// the budget covering a transaction date.
func (r *BudgetRepo) ListForCategory(ctx context.Context, ownerID, categoryID int64) ([]core.Budget, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT budget_id, user_id, category_id, limit_cents, start_date, end_date
		 FROM budgets WHERE user_id = ? AND category_id = ? ORDER BY start_date`, ownerID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list budgets for category: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *BudgetRepo) Update(ctx context.Context, b core.Budget) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE budgets SET category_id = ?, limit_cents = ?, start_date = ?, end_date = ?
		 WHERE budget_id = ? AND user_id = ?`,
		b.CategoryID, b.Limit.Cents, b.Start.String(), b.End.String(), b.ID, b.OwnerID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRow(res)
}

func (r *BudgetRepo) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM budgets WHERE budget_id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}
