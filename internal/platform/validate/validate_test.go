// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
	"github.com/ultimatemercer/identity/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "username", "alice", false},
		{"empty_string", "username", "", true},
		{"whitespace_only", "username", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "alice@example.com", true},
		{"plus_tag", "alice+tag@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "alice@", false},
		{"display_name_form", "Alice <alice@example.com>", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Username covers length, alphabet and boundary characters.
*/
func TestValidator_Username(t *testing.T) {
	tests := []struct {
		name     string
		username string
		isValid  bool
	}{
		{"simple", "alice", true},
		{"mixed", "Alice_99-x", true},
		{"min_length", "abc", true},
		{"max_length", strings.Repeat("a", 30), true},
		{"too_short", "ab", false},
		{"too_long", strings.Repeat("a", 31), false},
		{"leading_underscore", "_alice", false},
		{"trailing_hyphen", "alice-", false},
		{"space", "ali ce", false},
		{"non_ascii", "alicé", false},
		{"dot", "al.ice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Username("username", tt.username)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Password requires length plus ASCII lower, upper and digit
classes; letters and digits from other scripts do not count.
*/
func TestValidator_Password(t *testing.T) {
	tests := []struct {
		name     string
		password string
		isValid  bool
	}{
		{"strong", "Str0ngPass", true},
		{"too_short", "Sh0rt", false},
		{"no_upper", "str0ngpass", false},
		{"no_lower", "STR0NGPASS", false},
		{"no_digit", "StrongPass", false},
		{"non_ascii_upper_only", "abcdefg\u00c41", false},
		{"non_ascii_lower_only", "ABCDEFG\u00e91", false},
		{"non_ascii_digit_only", "Abcdefgh\u0661", false},
		{"non_ascii_extras", "\u00c4bcdefG1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Password("password", tt.password)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Preferences covers URL, language, timezone and TOTP rules.
*/
func TestValidator_Preferences(t *testing.T) {
	tests := []struct {
		name    string
		apply   func(v *validate.Validator)
		isValid bool
	}{
		{"https_url", func(v *validate.Validator) { v.URL("avatar_url", "https://cdn.example.com/a.png") }, true},
		{"relative_url", func(v *validate.Validator) { v.URL("avatar_url", "/a.png") }, false},
		{"ftp_url", func(v *validate.Validator) { v.URL("avatar_url", "ftp://example.com/a.png") }, false},
		{"language_en", func(v *validate.Validator) { v.Language("language", "en") }, true},
		{"language_region", func(v *validate.Validator) { v.Language("language", "pt-BR") }, true},
		{"language_garbage", func(v *validate.Validator) { v.Language("language", "not a tag!") }, false},
		{"timezone_utc", func(v *validate.Validator) { v.Timezone("timezone", "UTC") }, true},
		{"timezone_city", func(v *validate.Validator) { v.Timezone("timezone", "Europe/Paris") }, true},
		{"timezone_unknown", func(v *validate.Validator) { v.Timezone("timezone", "Mars/Base") }, false},
		{"timezone_local", func(v *validate.Validator) { v.Timezone("timezone", "Local") }, false},
		{"totp_ok", func(v *validate.Validator) { v.TOTPCode("totp_code", "123456") }, true},
		{"totp_short", func(v *validate.Validator) { v.TOTPCode("totp_code", "12345") }, false},
		{"totp_letters", func(v *validate.Validator) { v.TOTPCode("totp_code", "12a456") }, false},
		{"one_of_ok", func(v *validate.Validator) { v.OneOf("theme", "dark", "light", "dark", "auto") }, true},
		{"one_of_bad", func(v *validate.Validator) { v.OneOf("theme", "blue", "light", "dark", "auto") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			tt.apply(v)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Username("username", "_x").
		Password("password", "weak").
		Email("email", "not-an-email").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	assert.Len(t, ae.Details, 3)
}
