package core

import (
	"errors"
	"testing"
)

func TestValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Str0ng!pass", true},
		{"Aa1!Aa1!", true},      // exactly 8 chars with all classes
		{"Sh0rt!a", false},      // 7 chars
		{"alllower1!", false},   // no upper
		{"ALLUPPER1!", false},   // no lower
		{"NoDigits!!", false},   // no digit
		{"NoSymbol11", false},   // no symbol
		{"", false},
	}

	for _, tc := range cases {
		err := ValidatePasswordStrength(tc.password)
		if tc.ok && err != nil {
			t.Errorf("ValidatePasswordStrength(%q) = %v, want ok", tc.password, err)
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("ValidatePasswordStrength(%q) = nil, want error", tc.password)
			} else if !errors.Is(err, ErrWeakPassword) {
				t.Errorf("ValidatePasswordStrength(%q) = %v, want ErrWeakPassword", tc.password, err)
			}
		}
	}
}

func TestValidateEmailFormat(t *testing.T) {
	valid := []string{"user@domain.com", "first.last+tag@sub.domain.co"}
	for _, email := range valid {
		if err := ValidateEmailFormat(email); err != nil {
			t.Errorf("ValidateEmailFormat(%q) = %v, want ok", email, err)
		}
	}

	invalid := []string{"", "user", "user@", "@domain.com", "user@domain", "user@domain.c"}
	for _, email := range invalid {
		if err := ValidateEmailFormat(email); err == nil {
			t.Errorf("ValidateEmailFormat(%q) = nil, want error", email)
		}
	}
}
