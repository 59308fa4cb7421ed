package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is the parent of every input validation failure.
var ErrValidation = errors.New("validation failed")

// ErrEmptyCart is returned when checkout is attempted with no cart lines.
var ErrEmptyCart = &ValidationError{Field: "cart", Message: "Your cart is empty"}

// ValidationError reports bad caller input. It is detected before any store
// or network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var validate = validator.New()

// IsValidEmail reports whether s is a syntactically valid email address.
func IsValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// requireText trims value and fails when it is empty.
func requireText(field, label, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid(field, "%s is required", label)
	}
	return value, nil
}

// optionalText trims value and returns nil for empty input.
func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
