package core

import (
	"errors"
	"fmt"
	"strings"
)

const CategoryNameMaxLength = 40

var (
	ErrNumericName = errors.New("name cannot be only numbers")
)

// NormalizeCategoryName trims surrounding whitespace.
func NormalizeCategoryName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateCategoryName checks a normalized category name.
func ValidateCategoryName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if allDigits(name) {
		return ErrNumericName
	}
	if len(name) > CategoryNameMaxLength {
		return fmt.Errorf("name must be %d characters or fewer", CategoryNameMaxLength)
	}
	return nil
}

// CategoryLookup resolves a category by id. The second return value is false
// when no such category exists, which terminates an ancestor walk.
type CategoryLookup func(id int64) (Category, bool)

// ValidateParent checks whether parentID may become the parent of category.
// It walks the candidate's ancestor chain upward until a root or a shared
// default is reached and rejects any assignment that would close a cycle or
// cross an ownership boundary.
func ValidateParent(category Category, parentID int64, lookup CategoryLookup) error {
	if parentID == category.ID {
		return ErrOwnParent
	}

	parent, ok := lookup(parentID)
	if !ok {
		return ErrParentNotFound
	}
	if parent.OwnerID != nil {
		if category.OwnerID == nil || *parent.OwnerID != *category.OwnerID {
			return ErrCrossOwnerParent
		}
	}

	visited := map[int64]bool{parent.ID: true}
	cur := parent.ParentID
	for cur != nil {
		if *cur == category.ID {
			return ErrCyclicHierarchy
		}
		if visited[*cur] {
			// Pre-existing cycle in stored data; refuse to extend it.
			return ErrCyclicHierarchy
		}
		visited[*cur] = true

		next, ok := lookup(*cur)
		if !ok {
			break
		}
		if next.Shared() {
			// Shared defaults form the boundary of every user hierarchy.
			break
		}
		cur = next.ParentID
	}
	return nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
