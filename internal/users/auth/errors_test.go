// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultimatemercer/identity/internal/users/auth"
)

/*
TestError_AppError verifies the HTTP projection of each kind.
*/
func TestError_AppError(t *testing.T) {
	tests := []struct {
		name   string
		err    *auth.Error
		status int
		code   string
	}{
		{"username_taken", &auth.Error{Kind: auth.KindUsernameTaken, Field: auth.FieldUsername}, http.StatusConflict, "USERNAME_TAKEN"},
		{"email_taken", &auth.Error{Kind: auth.KindEmailTaken, Field: auth.FieldEmail}, http.StatusConflict, "EMAIL_TAKEN"},
		{"duplicate", auth.ErrDuplicateIdentity, http.StatusConflict, "DUPLICATE_IDENTITY"},
		{"invalid_credential", auth.ErrInvalidCredential, http.StatusUnauthorized, "INVALID_CREDENTIAL"},
		{"comparison_failure_is_hidden", auth.ErrComparisonFailure, http.StatusUnauthorized, "INVALID_CREDENTIAL"},
		{"two_factor_required", auth.ErrTwoFactorRequired, http.StatusUnauthorized, "TWO_FACTOR_REQUIRED"},
		{"two_factor_invalid", auth.ErrTwoFactorInvalid, http.StatusUnauthorized, "TWO_FACTOR_INVALID"},
		{"not_found", auth.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"reset_token", auth.ErrResetTokenInvalid, http.StatusBadRequest, "RESET_TOKEN_INVALID"},
		{"verification_token", auth.ErrVerificationTokenInvalid, http.StatusBadRequest, "VERIFICATION_TOKEN_INVALID"},
		{"not_enabled", auth.ErrTwoFactorNotEnabled, http.StatusBadRequest, "TWO_FACTOR_NOT_ENABLED"},
		{"store_unavailable", auth.ErrStoreUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appError := tt.err.AppError()
			assert.Equal(t, tt.status, appError.HTTPStatus)
			assert.Equal(t, tt.code, appError.Code)
		})
	}

	t.Run("conflict_details", func(t *testing.T) {
		appError := (&auth.Error{Kind: auth.KindEmailTaken, Field: auth.FieldEmail}).AppError()
		require.Len(t, appError.Details, 1)
		assert.Equal(t, auth.FieldEmail, appError.Details[0].Field)
	})
}

/*
TestError_Is matches by kind through wrapping.
*/
func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", &auth.Error{Kind: auth.KindUsernameTaken, Field: auth.FieldUsername})

	assert.ErrorIs(t, wrapped, auth.ErrUsernameTaken)
	assert.NotErrorIs(t, wrapped, auth.ErrEmailTaken)
	assert.Equal(t, auth.KindUsernameTaken, auth.KindOf(wrapped))
	assert.Equal(t, auth.ErrorKind(""), auth.KindOf(errors.New("plain")))
}
