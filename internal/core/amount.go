package core

import (
	"strconv"
	"strings"
)

// ParseAmount converts a raw imported amount string into Money.
//
// Accepted conventions mirror what bank exports actually produce:
// parenthesized values denote negatives, currency symbols and spaces are
// ignored, a lone comma acts as a decimal separator ("45,20"), and commas
// are otherwise treated as thousands separators ("1,234.56"). The result is
// always the absolute value in cents; zero amounts are rejected.
func ParseAmount(s string) (Money, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return Money{}, ErrInvalidAmount
	}

	negative := false
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		negative = true
		text = text[1 : len(text)-1]
	}

	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if strings.Count(cleaned, ",") == 1 && !strings.Contains(cleaned, ".") {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	switch cleaned {
	case "", "-", ".", "-.":
		return Money{}, ErrInvalidAmount
	}

	if strings.HasPrefix(cleaned, "-") {
		negative = true
		cleaned = cleaned[1:]
	}

	cents, err := decimalToCents(cleaned)
	if err != nil {
		return Money{}, err
	}
	if cents == 0 {
		return Money{}, ErrNonPositiveAmount
	}

	_ = negative // the stored amount is always the absolute value
	return Money{Cents: cents}, nil
}

// decimalToCents parses an unsigned decimal string into cents with half-up
// rounding on the third decimal place.
func decimalToCents(s string) (int64, error) {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	return iv*100 + fracCents, nil
}
