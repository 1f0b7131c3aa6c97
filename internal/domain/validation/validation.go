// Package validation provides the field-level error shared by domain packages.
package validation

import (
	"errors"
	"fmt"
)

// Error reports a violated field rule. It is always caller-fixable.
type Error struct {
	// Field is the offending field, empty when the rule spans several fields.
	Field string

	// Rule is the human readable rule, e.g. "duration must be non-negative".
	Rule string
}

// New creates a validation error for the given field and rule.
func New(field, rule string) *Error {
	return &Error{Field: field, Rule: rule}
}

// Newf creates a validation error with a formatted rule.
func Newf(field, format string, args ...any) *Error {
	return &Error{Field: field, Rule: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Rule
}

// Is reports whether err is a validation error.
func Is(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}
