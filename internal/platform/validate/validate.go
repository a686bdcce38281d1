// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Every format rule of the identity API (username shape, password strength,
// email syntax, locale preferences) lives here and nowhere else. Handlers run
// the rules on decoded payloads; services and repositories trust their input.
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
)

// # Identity Format Rules

const (
	UsernameMinLength = 3
	UsernameMaxLength = 30
	PasswordMinLength = 8
)

var (
	// usernameRegex: ASCII letters, digits, underscore and hyphen, with an
	// alphanumeric first and last character.
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9_-]*[A-Za-z0-9])?$`)

	// totpRegex matches a 6-digit one-time code.
	totpRegex = regexp.MustCompile(`^[0-9]{6}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails unless the value is a bare RFC 5322 address.
//
// Display-name forms such as "Alice <alice@example.com>" are rejected.
func (v *Validator) Email(field, value string) *Validator {
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Username fails unless the value is 3-30 characters of [A-Za-z0-9_-]
// starting and ending with a letter or digit.
func (v *Validator) Username(field, value string) *Validator {
	length := len(value)
	if length < UsernameMinLength || length > UsernameMaxLength {
		v.add(field, fmt.Sprintf("Must be between %d and %d characters", UsernameMinLength, UsernameMaxLength))
		return v
	}
	if !usernameRegex.MatchString(value) {
		v.add(field, "May contain only letters, digits, underscores and hyphens, and must start and end with a letter or digit")
	}
	return v
}

// Password fails unless the value has at least 8 characters including an
// ASCII lowercase letter, an ASCII uppercase letter and an ASCII digit.
func (v *Validator) Password(field, value string) *Validator {
	if utf8.RuneCountInString(value) < PasswordMinLength {
		v.add(field, fmt.Sprintf("Minimum %d characters", PasswordMinLength))
		return v
	}

	var hasLower, hasUpper, hasDigit bool
	for _, character := range value {
		switch {
		case 'a' <= character && character <= 'z':
			hasLower = true
		case 'A' <= character && character <= 'Z':
			hasUpper = true
		case '0' <= character && character <= '9':
			hasDigit = true
		}
	}

	if !hasLower || !hasUpper || !hasDigit {
		v.add(field, "Must contain a lowercase letter, an uppercase letter and a digit")
	}
	return v
}

// TOTPCode fails unless the value is exactly six digits.
func (v *Validator) TOTPCode(field, value string) *Validator {
	if !totpRegex.MatchString(value) {
		v.add(field, "Must be a 6-digit code")
	}
	return v
}

// # Profile Preference Rules

// URL fails unless the value is an absolute http or https URL.
func (v *Validator) URL(field, value string) *Validator {
	parsed, err := url.Parse(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		v.add(field, "Must be an absolute http(s) URL")
	}
	return v
}

// Language fails unless the value is a well-formed BCP-47 tag.
func (v *Validator) Language(field, value string) *Validator {
	if _, err := language.Parse(value); err != nil {
		v.add(field, "Must be a valid BCP-47 language tag")
	}
	return v
}

// Timezone fails unless the value names an IANA time zone.
func (v *Validator) Timezone(field, value string) *Validator {
	if value == "" || value == "Local" {
		v.add(field, "Must be a valid IANA time zone")
		return v
	}
	if _, err := time.LoadLocation(value); err != nil {
		v.add(field, "Must be a valid IANA time zone")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// Call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
