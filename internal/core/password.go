package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const MinPasswordLength = 8

// passwordSymbols matches the ASCII punctuation set.
const passwordSymbols = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var (
	ErrWeakPassword = errors.New("weak password")
	ErrInvalidEmail = errors.New("email must be in the form user@domain.com")
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidatePasswordStrength checks length and complexity rules: at least
// MinPasswordLength characters with one uppercase letter, one lowercase
// letter, one digit and one symbol.
func ValidatePasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, MinPasswordLength)
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	switch {
	case !upper:
		return fmt.Errorf("%w: must contain an uppercase letter", ErrWeakPassword)
	case !lower:
		return fmt.Errorf("%w: must contain a lowercase letter", ErrWeakPassword)
	case !digit:
		return fmt.Errorf("%w: must contain a number", ErrWeakPassword)
	case !symbol:
		return fmt.Errorf("%w: must contain a special character", ErrWeakPassword)
	}
	return nil
}

func ValidateEmailFormat(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}
