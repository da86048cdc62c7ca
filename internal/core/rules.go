package core

import (
	"fmt"
	"strings"
)

const RuleKeywordMaxLength = 60

// NormalizeKeyword lower-cases a rule keyword and collapses internal
// whitespace to single spaces.
func NormalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(strings.ToLower(keyword)), " ")
}

// ValidateKeyword checks a normalized rule keyword.
func ValidateKeyword(keyword string) error {
	if keyword == "" {
		return ErrEmptyName
	}
	if allDigits(keyword) {
		return ErrNumericName
	}
	if len(keyword) > RuleKeywordMaxLength {
		return fmt.Errorf("keyword must be %d characters or fewer", RuleKeywordMaxLength)
	}
	return nil
}

// ResolveCategory matches a transaction description against default rules and
// returns the category of the best match, or fallback when nothing matches.
// Matching is case-insensitive substring containment; among matches the
// longest keyword wins, with ties broken by rule order.
func ResolveCategory(description string, fallback int64, rules []DefaultRule) int64 {
	if strings.TrimSpace(description) == "" || len(rules) == 0 {
		return fallback
	}

	desc := strings.ToLower(description)
	best := -1
	bestLen := 0
	for i, rule := range rules {
		keyword := strings.ToLower(rule.Keyword)
		if keyword == "" || !strings.Contains(desc, keyword) {
			continue
		}
		if len(keyword) > bestLen {
			best = i
			bestLen = len(keyword)
		}
	}
	if best < 0 {
		return fallback
	}
	return rules[best].CategoryID
}
