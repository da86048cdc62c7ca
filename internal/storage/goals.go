package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgeteer/internal/core"
	"budgeteer/internal/dbx"
)

type GoalRepo struct {
	q dbx.DBTX
}

func NewGoalRepo(q dbx.DBTX) *GoalRepo {
	return &GoalRepo{q: q}
}

const goalColumns = `goal_id, user_id, linked_category, name, kind, target_cents, target_date, current_cents, progress, status, rank`

func scanGoal(scan func(...any) error) (core.Goal, error) {
	var g core.Goal
	var linked sql.NullInt64
	var rank sql.NullInt64
	var targetDate string
	if err := scan(&g.ID, &g.OwnerID, &linked, &g.Name, &g.Kind, &g.Target.Cents, &targetDate, &g.Current.Cents, &g.Progress, &g.Status, &rank); err != nil {
		return core.Goal{}, err
	}
	parsed, err := core.ParseDate(targetDate)
	if err != nil {
		return core.Goal{}, fmt.Errorf("stored target date %q: %w", targetDate, err)
	}
	g.TargetDate = parsed
	if linked.Valid {
		g.LinkedCategoryID = &linked.Int64
	}
	if rank.Valid {
		v := int(rank.Int64)
		g.Rank = &v
	}
	return g, nil
}

func (r *GoalRepo) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO goals (user_id, linked_category, name, kind, target_cents, target_date, current_cents, progress, status, rank)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.OwnerID, nullableID(g.LinkedCategoryID), g.Name, string(g.Kind), g.Target.Cents,
		g.TargetDate.String(), g.Current.Cents, g.Progress, string(g.Status), nullableRank(g.Rank))
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal id: %w", err)
	}
	return g, nil
}

func (r *GoalRepo) Get(ctx context.Context, id, ownerID int64) (core.Goal, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE goal_id = ? AND user_id = ?`, id, ownerID)
	g, err := scanGoal(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// List returns the owner's goals, ranked ones first in rank order.
func (r *GoalRepo) List(ctx context.Context, ownerID int64) ([]core.Goal, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ?
		 ORDER BY rank IS NULL, rank, goal_id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *GoalRepo) Update(ctx context.Context, g core.Goal) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE goals SET linked_category = ?, name = ?, kind = ?, target_cents = ?, target_date = ?,
		        current_cents = ?, progress = ?, status = ?, rank = ?
		 WHERE goal_id = ? AND user_id = ?`,
		nullableID(g.LinkedCategoryID), g.Name, string(g.Kind), g.Target.Cents, g.TargetDate.String(),
		g.Current.Cents, g.Progress, string(g.Status), nullableRank(g.Rank), g.ID, g.OwnerID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

func (r *GoalRepo) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM goals WHERE goal_id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res)
}

func nullableRank(rank *int) any {
	if rank == nil {
		return nil
	}
	return *rank
}
