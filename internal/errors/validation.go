package errors

import "strings"

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationErrors accumulates field errors across a whole create/update
// form. Every applicable field is checked before the result is returned,
// so a caller sees all violations at once rather than the first one.
type ValidationErrors struct {
	Fields []FieldError `json:"fields"`
}

// NewValidationErrors creates an empty accumulator.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add records a violation for a field.
func (v *ValidationErrors) Add(field, reason string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Reason: reason})
}

// Any reports whether at least one violation was recorded.
func (v *ValidationErrors) Any() bool {
	return len(v.Fields) > 0
}

// Has reports whether the named field has a recorded violation.
func (v *ValidationErrors) Has(field string) bool {
	for _, f := range v.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Error implements the error interface with a human-readable summary.
func (v *ValidationErrors) Error() string {
	if len(v.Fields) == 0 {
		return ""
	}
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return strings.Join(parts, "; ")
}
