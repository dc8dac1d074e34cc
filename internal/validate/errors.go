package validate

import (
	"fmt"
	"strings"
)

// FieldError describes why a single input field was rejected.
// Field is a dotted path such as "users[3].userId".
type FieldError struct {
	Field   string `json:"field" cbor:"field"`
	Message string `json:"message" cbor:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors collects field errors so a request reports every problem at once.
type Errors []FieldError

// Add records an error for field.
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Addf records a formatted error for field.
func (e *Errors) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

// Check records err against field when err is non-nil and reports whether
// the value was valid.
func (e *Errors) Check(field string, err error) bool {
	if err == nil {
		return true
	}
	e.Add(field, err.Error())
	return false
}

// Err returns nil when nothing was recorded, so callers can return it directly.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(e), strings.Join(parts, "; "))
}
