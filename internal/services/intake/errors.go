package intake

import (
	"strings"
)

const (
	CodeRequired      = "required"
	CodeInvalidNumber = "invalid_number"
	CodeInvalidEnum   = "invalid_enum"
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError lists every offending field of a draft, in form order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid invoice: " + strings.Join(parts, "; ")
}

// Field returns the error reported for name, if any.
func (e *ValidationError) Field(name string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldError{}, false
}
