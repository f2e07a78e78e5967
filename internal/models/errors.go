package models

import "fmt"

// ValidationError reports user input that was rejected before any store access.
// Key names the localized message; Message is the English fallback.
type ValidationError struct {
	Field   string
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, key, message string) *ValidationError {
	return &ValidationError{Field: field, Key: key, Message: message}
}
