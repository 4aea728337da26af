package shared

import (
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Username is the immutable key of an account.
type Username string

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{1,31}$`)

// IsValid checks if the username is well-formed.
func (u Username) IsValid() bool {
	return usernameRegex.MatchString(string(u))
}

// String returns the string representation.
func (u Username) String() string {
	return string(u)
}

// NewUsername creates a Username with validation. Surrounding whitespace is trimmed.
func NewUsername(value string) (Username, error) {
	u := Username(strings.TrimSpace(value))
	if u == "" {
		return "", NewDomainError("account", "Validate", ErrEmptyValue, "username is required")
	}
	if !u.IsValid() {
		return "", NewDomainError("account", "Validate", ErrInvalidInput,
			"username must be 2-32 characters of letters, digits, '.', '_' or '-'")
	}
	return u, nil
}

// Email is a normalized e-mail address.
type Email string

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValid checks if the e-mail looks like an address.
func (e Email) IsValid() bool {
	return emailRegex.MatchString(string(e))
}

// String returns the string representation.
func (e Email) String() string {
	return string(e)
}

// NewEmail creates an Email with validation. The address is lowercased.
func NewEmail(value string) (Email, error) {
	e := Email(strings.ToLower(strings.TrimSpace(value)))
	if e == "" {
		return "", NewDomainError("account", "Validate", ErrEmptyValue, "email is required")
	}
	if !e.IsValid() {
		return "", NewDomainError("account", "Validate", ErrInvalidInput, "invalid email address")
	}
	return e, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Numeric Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Percent is an integer percentage clamped to [0, 100].
type Percent int

// ClampPercent clamps any integer into [0, 100].
func ClampPercent(v int) Percent {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return Percent(v)
	}
}

// Int returns the underlying int value.
func (p Percent) Int() int {
	return int(p)
}

// Add returns p + delta, clamped.
func (p Percent) Add(delta int) Percent {
	return ClampPercent(int(p) + delta)
}
