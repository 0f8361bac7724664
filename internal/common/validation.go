package common

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError is one failed rule on one configuration key.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s=%v %s", e.Field, e.Value, e.Message)
}

// Validator collects errors across several fields; unlike processor
// configuration parsing it does not stop at the first failure.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field runs every rule against value and keeps each failure.
func (v *Validator) Field(fieldName string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorMessage joins the collected failures with "; ".
func (v *Validator) ErrorMessage() string {
	messages := make([]string, len(v.errors))
	for i, err := range v.errors {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// ValidationRule returns nil when value passes.
type ValidationRule func(fieldName string, value any) *ValidationError

func invalid(fieldName string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{Field: fieldName, Value: value, Message: fmt.Sprintf(format, args...)}
}

// Required rejects nil and blank strings.
func Required(fieldName string, value any) *ValidationError {
	switch v := value.(type) {
	case nil:
		return invalid(fieldName, value, "is required")
	case string:
		if strings.TrimSpace(v) == "" {
			return invalid(fieldName, value, "is required")
		}
	}
	return nil
}

// Positive rejects zero and negative numbers and durations.
func Positive(fieldName string, value any) *ValidationError {
	n, ok := asInt64(value)
	if !ok {
		return invalid(fieldName, value, "must be a number")
	}
	if n <= 0 {
		return invalid(fieldName, value, "must be positive")
	}
	return nil
}

// AtMost caps numeric values; it reports nothing for non-numeric input so
// it can be chained after Positive.
func AtMost(limit int64) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		if n, ok := asInt64(value); ok && n > limit {
			return invalid(fieldName, value, "must be at most %d", limit)
		}
		return nil
	}
}

// OneOf accepts only the listed string values, ignoring case.
func OneOf(allowed ...string) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		s, _ := value.(string)
		for _, a := range allowed {
			if strings.EqualFold(s, a) {
				return nil
			}
		}
		return invalid(fieldName, value, "must be one of [%s]", strings.Join(allowed, ", "))
	}
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case time.Duration:
		return int64(v), true
	}
	return 0, false
}
