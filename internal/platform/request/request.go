// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestutil reads JSON bodies and the authenticated caller from
// incoming identity API requests.
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
	"github.com/ultimatemercer/identity/internal/platform/ctxutil"
	"github.com/ultimatemercer/identity/internal/platform/validate"
)

// maxBodyBytes caps JSON payloads; the largest is a full profile update.
const maxBodyBytes = 64 << 10

var (
	errBodyTooLarge = apperr.ValidationError("Request body is too large")
	errEmptyBody    = apperr.ValidationError("Request body is required")
)

/*
DecodeJSON decodes exactly one JSON object from the body into target.

Unknown fields are rejected so that a misspelt "pasword" fails loudly
instead of silently leaving the field empty.

Returns:
  - error: *apperr.AppError (400) when the body is missing, oversized or malformed
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	err := decoder.Decode(target)

	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return errEmptyBody
	case errors.As(err, &tooLarge):
		return errBodyTooLarge
	}
	return validate.ErrInvalidJSON.WithCause(err)
}

// RequireAuthID returns the auth ID of the authenticated caller, or a 401.
func RequireAuthID(request *http.Request) (string, error) {
	authID := ctxutil.AuthID(request.Context())
	if authID == "" {
		return "", apperr.Unauthorized("Authentication required")
	}
	return authID, nil
}
