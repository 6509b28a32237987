package usecase

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrValidation is the base error for malformed client input. Specific
// messages wrap it with fmt.Errorf("%w: ...").
var ErrValidation = errors.New("invalid input")

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
)

func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 20 {
		return "", fmt.Errorf("%w: username must be between 3 and 20 characters", ErrValidation)
	}
	if !usernamePattern.MatchString(username) {
		return "", fmt.Errorf("%w: username may only contain letters, numbers and underscores", ErrValidation)
	}
	return username, nil
}

// validateEmail normalizes to lower case so lookups and uniqueness are
// case-insensitive.
func validateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return email, nil
}

func validatePassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if len(password) > 64 {
		return "", fmt.Errorf("%w: password must be at most 64 characters", ErrValidation)
	}
	return password, nil
}

func validateCode(code string) error {
	if len(code) != 6 {
		return fmt.Errorf("%w: verification code must be 6 digits", ErrValidation)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: verification code must be 6 digits", ErrValidation)
		}
	}
	return nil
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
