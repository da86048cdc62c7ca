package core

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeKeyword(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Coffee  ", "coffee"},
		{"Starbucks   Coffee", "starbucks coffee"},
		{"\tMIXED case \n words ", "mixed case words"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeKeyword(tc.in); got != tc.want {
			t.Errorf("NormalizeKeyword(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateKeyword(t *testing.T) {
	if err := ValidateKeyword("coffee"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidateKeyword(""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("empty: got %v", err)
	}
	if err := ValidateKeyword("404"); !errors.Is(err, ErrNumericName) {
		t.Fatalf("numeric: got %v", err)
	}
	if err := ValidateKeyword(strings.Repeat("k", RuleKeywordMaxLength+1)); err == nil {
		t.Fatal("expected error for over-long keyword")
	}
}

func TestResolveCategory(t *testing.T) {
	rules := []DefaultRule{
		{Keyword: "coffee", CategoryID: 1},
		{Keyword: "starbucks coffee", CategoryID: 2},
		{Keyword: "rent", CategoryID: 3},
	}

	t.Run("longest keyword wins", func(t *testing.T) {
		got := ResolveCategory("I bought coffee at Starbucks Coffee today", 99, rules)
		if got != 2 {
			t.Fatalf("got category %d, want 2", got)
		}
	})

	t.Run("single match", func(t *testing.T) {
		if got := ResolveCategory("monthly RENT payment", 99, rules); got != 3 {
			t.Fatalf("got category %d, want 3", got)
		}
	})

	t.Run("no match returns fallback", func(t *testing.T) {
		if got := ResolveCategory("utility bill", 99, rules); got != 99 {
			t.Fatalf("got category %d, want fallback 99", got)
		}
	})

	t.Run("empty description returns fallback", func(t *testing.T) {
		if got := ResolveCategory("  ", 99, rules); got != 99 {
			t.Fatalf("got category %d, want fallback 99", got)
		}
	})

	t.Run("no rules returns fallback", func(t *testing.T) {
		if got := ResolveCategory("coffee", 99, nil); got != 99 {
			t.Fatalf("got category %d, want fallback 99", got)
		}
	})

	t.Run("equal length ties broken by rule order", func(t *testing.T) {
		tied := []DefaultRule{
			{Keyword: "abcd", CategoryID: 5},
			{Keyword: "wxyz", CategoryID: 6},
		}
		if got := ResolveCategory("abcd wxyz", 99, tied); got != 5 {
			t.Fatalf("got category %d, want 5 (first rule)", got)
		}
	})
}
