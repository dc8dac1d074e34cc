// Package validate provides reusable input validation for request fields
// accepted by the match API.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length in characters (0 = no minimum)
	MaxLength      int            // Maximum length in characters (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex the whole value must match
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
	RejectControl  bool           // Whether control characters are rejected
}

// String validates a string against the given constraints.
// Returns the validated (and optionally trimmed) string and an error if validation fails.
func String(s string, constraints StringConstraints) (string, error) {
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrInvalidCharacters)
	}

	// Length is counted in characters, not bytes
	length := utf8.RuneCountInString(s)

	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}

	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}

	if constraints.RejectControl && strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("%w: control characters are not allowed", ErrInvalidCharacters)
	}

	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", fmt.Errorf("%w: does not match required pattern", ErrInvalidCharacters)
	}

	return s, nil
}

// Identifier validates a caller-supplied identifier such as a user ID:
// - Required (not empty after trimming)
// - At most maxLength characters
// - No control characters
func Identifier(id string, maxLength int) (string, error) {
	return String(id, StringConstraints{
		MinLength:     1,
		MaxLength:     maxLength,
		AllowEmpty:    false,
		TrimSpace:     true,
		RejectControl: true,
	})
}

// Text validates free text that is scored, not displayed:
// - Optional (can be empty)
// - At most maxLength characters (0 = unbounded)
// Whitespace is preserved since it separates terms.
func Text(text string, maxLength int) (string, error) {
	return String(text, StringConstraints{
		MaxLength:  maxLength,
		AllowEmpty: true,
	})
}
