package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgeteer/internal/core"
	"budgeteer/internal/dbx"
)

type CategoryRepo struct {
	q dbx.DBTX
}

func NewCategoryRepo(q dbx.DBTX) *CategoryRepo {
	return &CategoryRepo{q: q}
}

const categoryColumns = `category_id, parent_category_id, name, type, user_id`

func scanCategory(scan func(...any) error) (core.Category, error) {
	var c core.Category
	var parent, owner sql.NullInt64
	if err := scan(&c.ID, &parent, &c.Name, &c.Type, &owner); err != nil {
		return core.Category{}, err
	}
	if parent.Valid {
		c.ParentID = &parent.Int64
	}
	if owner.Valid {
		c.OwnerID = &owner.Int64
	}
	return c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO categories (parent_category_id, name, type, user_id) VALUES (?, ?, ?, ?)`,
		nullableID(c.ParentID), c.Name, string(c.Type), nullableID(c.OwnerID))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return c, nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (core.Category, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE category_id = ?`, id)
	c, err := scanCategory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// GetByName finds a category visible to the owner: their own or a shared
// default. Names compare case-insensitively.
func (r *CategoryRepo) GetByName(ctx context.Context, name string, ownerID int64) (core.Category, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE name = ? COLLATE NOCASE AND (user_id IS NULL OR user_id = ?)
		 ORDER BY user_id IS NULL LIMIT 1`, name, ownerID)
	c, err := scanCategory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

// ListVisible returns shared defaults plus the owner's categories.
func (r *CategoryRepo) ListVisible(ctx context.Context, ownerID int64) ([]core.Category, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE user_id IS NULL OR user_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		c, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *CategoryRepo) Update(ctx context.Context, c core.Category) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE categories SET parent_category_id = ?, name = ?, type = ? WHERE category_id = ?`,
		nullableID(c.ParentID), c.Name, string(c.Type), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM categories WHERE category_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// InUse reports whether any transaction, default rule or child category still
// references the category.
func (r *CategoryRepo) InUse(ctx context.Context, id int64) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM transactions WHERE category_id = ?)
		      + (SELECT COUNT(*) FROM default_rules WHERE category_id = ?)
		      + (SELECT COUNT(*) FROM categories WHERE parent_category_id = ?)`,
		id, id, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("category usage: %w", err)
	}
	return n > 0, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
