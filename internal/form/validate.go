package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/localnerve/archhub/internal/types"
)

const (
	msgRequired      = "This field is required"
	msgSelect        = "Please select an option"
	msgChecked       = "This field must be checked"
	msgDate          = "Please select a date"
	msgInvalidDate   = "Invalid date format"
	msgInvalidFormat = "Invalid format"
)

// ValidationErrors maps field keys to messages
type ValidationErrors = types.ValidationErrors

// Accepted date layouts, tried in order
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses a date or date-time value
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Check validates a value against the field's policy and returns the message,
// or "" when the value is acceptable.
func (f *Field) Check(value any) string {
	required := f.Validation.Required

	switch f.Kind {
	case KindTextbox:
		return f.checkText(asString(value), required)

	case KindSelect:
		if required && strings.TrimSpace(asString(value)) == "" {
			return msgSelect
		}

	case KindCheckbox:
		if required && !asBool(value) {
			return msgChecked
		}

	case KindDateTime:
		s := strings.TrimSpace(asString(value))
		if s == "" {
			if required {
				return msgDate
			}
			return ""
		}
		if _, err := ParseDate(s); err != nil {
			return msgInvalidDate
		}
	}

	return ""
}

func (f *Field) checkText(s string, required bool) string {
	v := &f.Validation

	if strings.TrimSpace(s) == "" {
		if required {
			return msgRequired
		}
		return ""
	}

	n := utf8.RuneCountInString(s)
	// Optional text only enforces the upper bound
	if required && v.MinLength > 0 && n < v.MinLength {
		return fmt.Sprintf("Minimum length is %d characters", v.MinLength)
	}
	if v.MaxLength > 0 && n > v.MaxLength {
		return fmt.Sprintf("Maximum length is %d characters", v.MaxLength)
	}
	if v.pattern != nil && !v.pattern.MatchString(s) {
		if v.CustomMessage != "" {
			return v.CustomMessage
		}
		return msgInvalidFormat
	}
	return ""
}

// ValidateFields checks values for every field and collects the failures
func ValidateFields(fields []*Field, values Values) ValidationErrors {
	errs := make(ValidationErrors)
	for _, f := range fields {
		if msg := f.Check(values[f.Key]); msg != "" {
			errs[f.Key] = msg
		}
	}
	return errs
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	}
	return false
}
