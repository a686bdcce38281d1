// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"net/http"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
)

// # Error Taxonomy

// ErrorKind classifies a credential failure so callers can react without
// matching on messages.
type ErrorKind string

const (
	KindUsernameTaken            ErrorKind = "USERNAME_TAKEN"
	KindEmailTaken               ErrorKind = "EMAIL_TAKEN"
	KindDuplicateIdentity        ErrorKind = "DUPLICATE_IDENTITY"
	KindStoreUnavailable         ErrorKind = "STORE_UNAVAILABLE"
	KindInvalidCredential        ErrorKind = "INVALID_CREDENTIAL"
	KindComparisonFailure        ErrorKind = "COMPARISON_FAILURE"
	KindNotFound                 ErrorKind = "NOT_FOUND"
	KindResetTokenInvalid        ErrorKind = "RESET_TOKEN_INVALID"
	KindVerificationTokenInvalid ErrorKind = "VERIFICATION_TOKEN_INVALID"
	KindTwoFactorRequired        ErrorKind = "TWO_FACTOR_REQUIRED"
	KindTwoFactorInvalid         ErrorKind = "TWO_FACTOR_INVALID"
	KindTwoFactorNotEnabled      ErrorKind = "TWO_FACTOR_NOT_ENABLED"
)

// Error is the typed failure returned by the repository and the service.
type Error struct {
	Kind ErrorKind
	// Field names the attribute involved, e.g. "email" for a collision.
	Field string
	Cause error
}

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrUsernameTaken            = &Error{Kind: KindUsernameTaken}
	ErrEmailTaken               = &Error{Kind: KindEmailTaken}
	ErrDuplicateIdentity        = &Error{Kind: KindDuplicateIdentity}
	ErrStoreUnavailable         = &Error{Kind: KindStoreUnavailable}
	ErrInvalidCredential        = &Error{Kind: KindInvalidCredential}
	ErrComparisonFailure        = &Error{Kind: KindComparisonFailure}
	ErrNotFound                 = &Error{Kind: KindNotFound}
	ErrResetTokenInvalid        = &Error{Kind: KindResetTokenInvalid}
	ErrVerificationTokenInvalid = &Error{Kind: KindVerificationTokenInvalid}
	ErrTwoFactorRequired        = &Error{Kind: KindTwoFactorRequired}
	ErrTwoFactorInvalid         = &Error{Kind: KindTwoFactorInvalid}
	ErrTwoFactorNotEnabled      = &Error{Kind: KindTwoFactorNotEnabled}
)

func newError(kind ErrorKind, field string, cause error) *Error {
	return &Error{Kind: kind, Field: field, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	message := "auth: " + string(e.Kind)
	if e.Field != "" {
		message += " (" + e.Field + ")"
	}
	if e.Cause != nil {
		message += ": " + e.Cause.Error()
	}
	return message
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return ""
}

// # Transport Mapping

// AppError maps the failure onto the HTTP error envelope.
//
// Credential failures of every flavour (unknown identifier, wrong password,
// comparison fault) share one response so callers cannot enumerate accounts.
func (e *Error) AppError() *apperr.AppError {
	var appError *apperr.AppError

	switch e.Kind {
	case KindUsernameTaken:
		appError = apperr.New(http.StatusConflict, string(e.Kind), "Username is already taken")
	case KindEmailTaken:
		appError = apperr.New(http.StatusConflict, string(e.Kind), "Email is already registered")
	case KindDuplicateIdentity:
		appError = apperr.New(http.StatusConflict, string(e.Kind), "Identity already exists")
	case KindInvalidCredential, KindComparisonFailure:
		appError = apperr.New(http.StatusUnauthorized, string(KindInvalidCredential), "Invalid login credentials")
	case KindTwoFactorRequired:
		appError = apperr.New(http.StatusUnauthorized, string(e.Kind), "Two-factor code required")
	case KindTwoFactorInvalid:
		appError = apperr.New(http.StatusUnauthorized, string(e.Kind), "Two-factor code is invalid")
	case KindNotFound:
		appError = apperr.New(http.StatusNotFound, string(e.Kind), "Identity not found")
	case KindResetTokenInvalid:
		appError = apperr.New(http.StatusBadRequest, string(e.Kind), "Reset token is invalid or expired")
	case KindVerificationTokenInvalid:
		appError = apperr.New(http.StatusBadRequest, string(e.Kind), "Verification token is invalid or expired")
	case KindTwoFactorNotEnabled:
		appError = apperr.New(http.StatusBadRequest, string(e.Kind), "Two-factor authentication is not enabled")
	case KindStoreUnavailable:
		appError = apperr.ServiceUnavailable("Credential store is temporarily unavailable")
	default:
		return apperr.Internal(e)
	}

	if e.Field != "" && appError.HTTPStatus == http.StatusConflict {
		appError = appError.WithField(e.Field)
	}

	return appError.WithCause(e.Cause)
}
