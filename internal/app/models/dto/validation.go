package dto

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// HandleValidationError converts a binding error into a VAL_001 error detail
func HandleValidationError(err error) *ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewErrorDetail(ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   lowerFirst(fe.Field()),
			Rule:    fe.Tag(),
			Message: FormatValidationError(fe),
		})
	}

	detail := NewErrorDetail(ErrorCodeValidationFailed, "Validation failed").WithDetails(fields)
	if len(fields) == 1 {
		detail.Field = fields[0].Field
	}
	return detail
}

// FormatValidationError creates a human-readable validation error message
func FormatValidationError(e validator.FieldError) string {
	field := lowerFirst(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "hhmm":
		return field + " must be a time in HH:MM format"
	case "date":
		return field + " must be a date in YYYY-MM-DD format"
	case "academicyear":
		return field + " must look like 2025 or 2025-26"
	case "roomnumber":
		return field + " may only contain letters, digits and dashes"
	case "phone":
		return field + " must be a phone number with 7 to 15 digits"
	default:
		return field + " validation failed: " + e.Tag()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if strings.ToUpper(s) == s {
		return strings.ToLower(s)
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
