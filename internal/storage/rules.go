package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgeteer/internal/core"
	"budgeteer/internal/dbx"
)

type RuleRepo struct {
	q dbx.DBTX
}

func NewRuleRepo(q dbx.DBTX) *RuleRepo {
	return &RuleRepo{q: q}
}

func scanRule(scan func(...any) error) (core.DefaultRule, error) {
	var rule core.DefaultRule
	var owner sql.NullInt64
	if err := scan(&rule.ID, &owner, &rule.Keyword, &rule.CategoryID); err != nil {
		return core.DefaultRule{}, err
	}
	if owner.Valid {
		rule.OwnerID = &owner.Int64
	}
	return rule, nil
}

func (r *RuleRepo) Create(ctx context.Context, rule core.DefaultRule) (core.DefaultRule, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO default_rules (user_id, keyword, category_id) VALUES (?, ?, ?)`,
		nullableID(rule.OwnerID), rule.Keyword, rule.CategoryID)
	if err != nil {
		return core.DefaultRule{}, fmt.Errorf("create rule: %w", err)
	}
	rule.ID, err = res.LastInsertId()
	if err != nil {
		return core.DefaultRule{}, fmt.Errorf("rule id: %w", err)
	}
	return rule, nil
}

// ListVisible returns shared rules plus the owner's own.
func (r *RuleRepo) ListVisible(ctx context.Context, ownerID int64) ([]core.DefaultRule, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT rule_id, user_id, keyword, category_id FROM default_rules
		 WHERE user_id IS NULL OR user_id = ? ORDER BY rule_id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []core.DefaultRule
	for rows.Next() {
		rule, err := scanRule(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *RuleRepo) GetByKeyword(ctx context.Context, keyword string, ownerID int64) (core.DefaultRule, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT rule_id, user_id, keyword, category_id FROM default_rules
		 WHERE keyword = ? AND (user_id IS NULL OR user_id = ?) LIMIT 1`, keyword, ownerID)
	rule, err := scanRule(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultRule{}, ErrNotFound
	}
	if err != nil {
		return core.DefaultRule{}, fmt.Errorf("get rule by keyword: %w", err)
	}
	return rule, nil
}

func (r *RuleRepo) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM default_rules WHERE rule_id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return requireRow(res)
}
