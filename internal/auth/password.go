package auth

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Password length bounds. The upper bound is in bytes because bcrypt
// refuses longer input.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

// PasswordSpecialChars is the set a password must draw at least one character from.
const PasswordSpecialChars = "!@#$%^&"

// Password policy violations, in the order they are checked.
var (
	ErrPasswordTooShort   = errors.New("Password must be at least 8 characters long")
	ErrPasswordTooLong    = errors.New("Password must be shorter than 72 characters")
	ErrPasswordSpaces     = errors.New("Password must not start or end with spaces")
	ErrPasswordComplexity = errors.New("Password must contain 1 upper case letter, 1 lower case letter, 1 number, and 1 special character")
)

// ValidatePassword checks a candidate password against the policy.
// It returns nil or the first rule the password breaks.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if strings.HasPrefix(password, " ") || strings.HasSuffix(password, " ") {
		return ErrPasswordSpaces
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return ErrPasswordComplexity
	}
	return nil
}
