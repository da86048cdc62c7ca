package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgeteer/internal/core"
	"budgeteer/internal/dbx"
)

type TransactionRepo struct {
	q dbx.DBTX
}

func NewTransactionRepo(q dbx.DBTX) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const transactionColumns = `transaction_id, user_id, category_id, date, description, amount_cents, type, tag, goal_id`

func scanTransaction(scan func(...any) error) (core.Transaction, error) {
	var t core.Transaction
	var date string
	var goal sql.NullInt64
	if err := scan(&t.ID, &t.OwnerID, &t.CategoryID, &date, &t.Description, &t.Amount.Cents, &t.Type, &t.Tag, &goal); err != nil {
		return core.Transaction{}, err
	}
	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	t.Date = parsed
	if goal.Valid {
		t.GoalID = &goal.Int64
	}
	return t, nil
}

func (r *TransactionRepo) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category_id, date, description, amount_cents, type, tag, goal_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.CategoryID, t.Date.String(), t.Description, t.Amount.Cents, string(t.Type), t.Tag, nullableID(t.GoalID))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	return t, nil
}

func (r *TransactionRepo) Get(ctx context.Context, id, ownerID int64) (core.Transaction, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = ? AND user_id = ?`, id, ownerID)
	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListRange returns the owner's transactions within an inclusive date range,
// oldest first.
func (r *TransactionRepo) ListRange(ctx context.Context, ownerID int64, start, end core.Date) ([]core.Transaction, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date, transaction_id`,
		ownerID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *TransactionRepo) ListAll(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY date, transaction_id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txns []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *TransactionRepo) Update(ctx context.Context, t core.Transaction) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE transactions SET category_id = ?, date = ?, description = ?, amount_cents = ?, type = ?, tag = ?, goal_id = ?
		 WHERE transaction_id = ? AND user_id = ?`,
		t.CategoryID, t.Date.String(), t.Description, t.Amount.Cents, string(t.Type), t.Tag, nullableID(t.GoalID), t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *TransactionRepo) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM transactions WHERE transaction_id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// SumExpenses totals expense cents for one owner and category inside an
// inclusive date range, for budget alert evaluation.
func (r *TransactionRepo) SumExpenses(ctx context.Context, ownerID, categoryID int64, start, end core.Date) (core.Money, error) {
	var cents int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		 WHERE user_id = ? AND category_id = ? AND type = 'expense' AND date >= ? AND date <= ?`,
		ownerID, categoryID, start.String(), end.String()).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
