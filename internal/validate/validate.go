// Package validate holds the client-side form checks. They are advisory
// only: the server re-validates everything and its messages win on failure.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"backoffice-cli/internal/model"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldError is a validation failure rendered inline next to the field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return FieldError{Field: field, Message: "is required"}
	}
	return nil
}

func Email(field, value string) error {
	if !emailRe.MatchString(strings.TrimSpace(value)) {
		return FieldError{Field: field, Message: "must be a valid email address"}
	}
	return nil
}

// Phone accepts 7 to 15 digits with an optional leading +.
func Phone(field, value string) error {
	v := strings.TrimSpace(value)
	v = strings.TrimPrefix(v, "+")
	if len(v) < 7 || len(v) > 15 {
		return FieldError{Field: field, Message: "must be 7-15 digits"}
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return FieldError{Field: field, Message: "must contain digits only"}
		}
	}
	return nil
}

// Password enforces the backend's complexity floor: at least 6 characters
// with an uppercase letter, a lowercase letter, and a digit.
func Password(field, value string) error {
	if len(value) < 6 {
		return FieldError{Field: field, Message: "must be at least 6 characters"}
	}
	var upper, lower, digit bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return FieldError{Field: field, Message: "must contain an uppercase letter"}
	case !lower:
		return FieldError{Field: field, Message: "must contain a lowercase letter"}
	case !digit:
		return FieldError{Field: field, Message: "must contain a digit"}
	}
	return nil
}

// DuplicateName checks the currently loaded page for a case-insensitive
// name collision. Best-effort UX guard only: it sees one page, not the full
// dataset, so passing it proves nothing — the server's 409 is authoritative.
func DuplicateName(name string, loaded []model.Item) error {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return nil
	}
	for _, it := range loaded {
		if strings.ToLower(strings.TrimSpace(it.Name())) == want {
			return FieldError{Field: "name", Message: fmt.Sprintf("%q already exists", it.Name())}
		}
	}
	return nil
}
