package validator

import (
	"errors"
	"net/http"
	"strings"
)

// ErrInvalidTarget is returned when ValidateStruct gets something other than a struct pointer.
var ErrInvalidTarget = errors.New("validator: must pass a pointer to struct")

// ValidationError describes a single failed rule.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects failures for all fields. It renders as 422.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) StatusCode() int { return http.StatusUnprocessableEntity }

// Details maps each field to its first failure message.
func (v ValidationErrors) Details() map[string]any {
	out := make(map[string]any, len(v))
	for _, e := range v {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Has reports whether field failed any rule.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// IsValidationError reports whether err carries ValidationErrors.
func IsValidationError(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}
