package services

import (
	"context"
	"database/sql"
	"errors"

	"budgeteer/internal/core"
	"budgeteer/internal/storage"
)

// RuleService manages the keyword-to-category rules used for
// auto-categorization.
type RuleService struct {
	db *sql.DB
}

func NewRuleService(db *sql.DB) *RuleService {
	return &RuleService{db: db}
}

// Create normalizes and validates the keyword, checks it is not already taken
// among the rules visible to the owner, and stores the mapping.
func (s *RuleService) Create(ctx context.Context, ownerID int64, keyword string, categoryID int64) (core.DefaultRule, error) {
	keyword = core.NormalizeKeyword(keyword)
	if err := core.ValidateKeyword(keyword); err != nil {
		return core.DefaultRule{}, err
	}

	rules := storage.NewRuleRepo(s.db)
	if _, err := rules.GetByKeyword(ctx, keyword, ownerID); err == nil {
		return core.DefaultRule{}, ErrDuplicateKeyword
	} else if !errors.Is(err, storage.ErrNotFound) {
		return core.DefaultRule{}, err
	}

	category, err := storage.NewCategoryRepo(s.db).GetByID(ctx, categoryID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.DefaultRule{}, ErrCategoryNotFound
	}
	if err != nil {
		return core.DefaultRule{}, err
	}
	if !visibleTo(category, ownerID) {
		return core.DefaultRule{}, ErrCategoryNotFound
	}

	return rules.Create(ctx, core.DefaultRule{
		OwnerID:    &ownerID,
		Keyword:    keyword,
		CategoryID: categoryID,
	})
}

// List returns shared rules plus the owner's own, in rule order.
func (s *RuleService) List(ctx context.Context, ownerID int64) ([]core.DefaultRule, error) {
	return storage.NewRuleRepo(s.db).ListVisible(ctx, ownerID)
}

func (s *RuleService) Delete(ctx context.Context, ownerID, id int64) error {
	return storage.NewRuleRepo(s.db).Delete(ctx, id, ownerID)
}
