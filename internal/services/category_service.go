package services

import (
	"context"
	"database/sql"
	"errors"

	"budgeteer/internal/core"
	"budgeteer/internal/storage"
)

// CategoryService manages the per-user category tree on top of the shared
// defaults. Shared defaults are read-only; hierarchy changes are validated
// against the full visible tree.
type CategoryService struct {
	db *sql.DB
}

func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) Create(ctx context.Context, ownerID int64, name string, txType core.TransactionType, parentID *int64) (core.Category, error) {
	name = core.NormalizeCategoryName(name)
	if err := core.ValidateCategoryName(name); err != nil {
		return core.Category{}, err
	}
	if err := txType.Validate(); err != nil {
		return core.Category{}, err
	}

	repo := storage.NewCategoryRepo(s.db)
	if _, err := repo.GetByName(ctx, name, ownerID); err == nil {
		return core.Category{}, ErrDuplicateName
	} else if !errors.Is(err, storage.ErrNotFound) {
		return core.Category{}, err
	}

	category := core.Category{Name: name, Type: txType, OwnerID: &ownerID, ParentID: parentID}
	if parentID != nil {
		lookup, err := s.visibleLookup(ctx, ownerID)
		if err != nil {
			return core.Category{}, err
		}
		if err := core.ValidateParent(category, *parentID, lookup); err != nil {
			return core.Category{}, err
		}
	}
	return repo.Create(ctx, category)
}

func (s *CategoryService) Get(ctx context.Context, ownerID, id int64) (core.Category, error) {
	c, err := storage.NewCategoryRepo(s.db).GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Category{}, ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, err
	}
	if !visibleTo(c, ownerID) {
		return core.Category{}, ErrCategoryNotFound
	}
	return c, nil
}

// List returns the shared defaults plus the owner's categories, sorted by
// name.
func (s *CategoryService) List(ctx context.Context, ownerID int64) ([]core.Category, error) {
	return storage.NewCategoryRepo(s.db).ListVisible(ctx, ownerID)
}

// Rename changes a category's name and optionally reparents it. Shared
// defaults cannot be changed.
func (s *CategoryService) Update(ctx context.Context, ownerID, id int64, name string, parentID *int64) (core.Category, error) {
	repo := storage.NewCategoryRepo(s.db)
	category, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return core.Category{}, err
	}
	if category.Shared() {
		return core.Category{}, ErrSharedReadOnly
	}

	name = core.NormalizeCategoryName(name)
	if err := core.ValidateCategoryName(name); err != nil {
		return core.Category{}, err
	}
	if existing, err := repo.GetByName(ctx, name, ownerID); err == nil {
		if existing.ID != id {
			return core.Category{}, ErrDuplicateName
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return core.Category{}, err
	}

	category.Name = name
	category.ParentID = parentID
	if parentID != nil {
		lookup, err := s.visibleLookup(ctx, ownerID)
		if err != nil {
			return core.Category{}, err
		}
		if err := core.ValidateParent(category, *parentID, lookup); err != nil {
			return core.Category{}, err
		}
	}
	if err := repo.Update(ctx, category); err != nil {
		return core.Category{}, err
	}
	return category, nil
}

// Delete removes an owned, unused category. Categories still referenced by
// transactions, rules or children are refused.
func (s *CategoryService) Delete(ctx context.Context, ownerID, id int64) error {
	repo := storage.NewCategoryRepo(s.db)
	category, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if category.Shared() {
		return ErrSharedReadOnly
	}

	inUse, err := repo.InUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrCategoryInUse
	}
	return repo.Delete(ctx, id)
}

// visibleLookup materializes the visible tree once so hierarchy validation
// does not query per ancestor.
func (s *CategoryService) visibleLookup(ctx context.Context, ownerID int64) (core.CategoryLookup, error) {
	cats, err := storage.NewCategoryRepo(s.db).ListVisible(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return func(id int64) (core.Category, bool) {
		c, ok := byID[id]
		return c, ok
	}, nil
}

func visibleTo(c core.Category, ownerID int64) bool {
	return c.OwnerID == nil || *c.OwnerID == ownerID
}
