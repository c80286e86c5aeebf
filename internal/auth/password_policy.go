package auth

import (
	"strings"
	"unicode"

	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

const (
	minPasswordLength    = 8
	maxPasswordBytes     = 72
	passwordSpecialChars = "@$!%*?&"
)

// ValidatePasswordStrength enforces the admin password policy.
func ValidatePasswordStrength(password string) error {
	if len(password) < minPasswordLength {
		return policyError("password must be at least 8 characters long")
	}
	// bcrypt rejects longer input.
	if len(password) > maxPasswordBytes {
		return policyError("password must be at most 72 bytes long")
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			special = true
		}
	}

	switch {
	case !lower:
		return policyError("password must contain a lowercase letter")
	case !upper:
		return policyError("password must contain an uppercase letter")
	case !digit:
		return policyError("password must contain a digit")
	case !special:
		return policyError("password must contain one of " + passwordSpecialChars)
	}
	return nil
}

func policyError(msg string) error {
	return apperrors.NewValidationError(msg, map[string]any{"field": "new_password"})
}
