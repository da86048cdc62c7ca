package core

import (
	"errors"
	"strings"
	"testing"
)

func ptr(v int64) *int64 { return &v }

// buildLookup indexes categories by id for ancestor walks.
func buildLookup(cats []Category) CategoryLookup {
	byID := make(map[int64]Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return func(id int64) (Category, bool) {
		c, ok := byID[id]
		return c, ok
	}
}

func TestValidateCategoryName(t *testing.T) {
	if err := ValidateCategoryName("Groceries"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidateCategoryName(""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("empty name: got %v", err)
	}
	if err := ValidateCategoryName("12345"); !errors.Is(err, ErrNumericName) {
		t.Fatalf("numeric name: got %v", err)
	}
	long := strings.Repeat("x", CategoryNameMaxLength+1)
	if err := ValidateCategoryName(long); err == nil {
		t.Fatal("expected error for over-long name")
	}
}

func TestValidateParent(t *testing.T) {
	owner := int64(7)
	other := int64(8)

	// A (1) <- B (2) <- C (3), all owned by 7; Shared (10) is a default root.
	cats := []Category{
		{ID: 1, Name: "A", OwnerID: &owner},
		{ID: 2, Name: "B", ParentID: ptr(1), OwnerID: &owner},
		{ID: 3, Name: "C", ParentID: ptr(2), OwnerID: &owner},
		{ID: 4, Name: "D", OwnerID: &owner},
		{ID: 5, Name: "Foreign", OwnerID: &other},
		{ID: 10, Name: "Shared"},
	}
	lookup := buildLookup(cats)
	a := cats[0]

	t.Run("own parent rejected", func(t *testing.T) {
		if err := ValidateParent(a, 1, lookup); !errors.Is(err, ErrOwnParent) {
			t.Fatalf("got %v, want ErrOwnParent", err)
		}
	})

	t.Run("direct child rejected", func(t *testing.T) {
		if err := ValidateParent(a, 2, lookup); !errors.Is(err, ErrCyclicHierarchy) {
			t.Fatalf("got %v, want ErrCyclicHierarchy", err)
		}
	})

	t.Run("deep descendant rejected", func(t *testing.T) {
		if err := ValidateParent(a, 3, lookup); !errors.Is(err, ErrCyclicHierarchy) {
			t.Fatalf("got %v, want ErrCyclicHierarchy", err)
		}
	})

	t.Run("unrelated node accepted", func(t *testing.T) {
		if err := ValidateParent(a, 4, lookup); err != nil {
			t.Fatalf("got %v, want ok", err)
		}
	})

	t.Run("shared default accepted as parent", func(t *testing.T) {
		if err := ValidateParent(a, 10, lookup); err != nil {
			t.Fatalf("got %v, want ok", err)
		}
	})

	t.Run("foreign owner rejected", func(t *testing.T) {
		if err := ValidateParent(a, 5, lookup); !errors.Is(err, ErrCrossOwnerParent) {
			t.Fatalf("got %v, want ErrCrossOwnerParent", err)
		}
	})

	t.Run("missing parent rejected", func(t *testing.T) {
		if err := ValidateParent(a, 99, lookup); !errors.Is(err, ErrParentNotFound) {
			t.Fatalf("got %v, want ErrParentNotFound", err)
		}
	})
}

func TestValidateParentTerminatesOnCorruptCycle(t *testing.T) {
	owner := int64(1)
	// 20 and 21 already point at each other; the walk must still terminate.
	cats := []Category{
		{ID: 19, Name: "New", OwnerID: &owner},
		{ID: 20, Name: "X", ParentID: ptr(21), OwnerID: &owner},
		{ID: 21, Name: "Y", ParentID: ptr(20), OwnerID: &owner},
	}
	lookup := buildLookup(cats)

	if err := ValidateParent(cats[0], 20, lookup); !errors.Is(err, ErrCyclicHierarchy) {
		t.Fatalf("got %v, want ErrCyclicHierarchy", err)
	}
}
