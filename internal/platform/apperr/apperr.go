// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the transport error of the identity API.

Domain packages raise their own typed errors (see [auth.Error]) and present
them as an [AppError] at the boundary. Platform code (validation, the
authentication middleware, store wrappers) raises AppError directly.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Generic codes. Domain codes such as EMAIL_TAKEN live with their domain.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
)

// AppError carries a machine-readable code, a client-safe message and the
// HTTP status. Cause is logged server-side and never serialised.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause returns a copy of e that records cause for logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithField returns a copy of e that blames field.
func (e *AppError) WithField(field string) *AppError {
	clone := *e
	clone.Details = []FieldError{{Field: field, Message: e.Message}}
	return &clone
}

// New builds an [AppError] with an explicit status and code.
func New(status int, code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, HTTPStatus: status}
}

// # 4xx

// NotFound reports a missing resource, e.g. NotFound("Profile").
func NotFound(resource string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, resource+" not found")
}

func Unauthorized(msg string) *AppError {
	return New(http.StatusUnauthorized, CodeUnauthorized, msg)
}

func Conflict(msg string) *AppError {
	return New(http.StatusConflict, CodeConflict, msg)
}

// ValidationError reports a 400 with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	appError := New(http.StatusBadRequest, CodeValidation, msg)
	appError.Details = details
	return appError
}

// RateLimited reports a 429 that the client may retry after the given delay.
func RateLimited(retryAfterSeconds int) *AppError {
	return New(http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// # 5xx

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return New(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred").WithCause(cause)
}

// ServiceUnavailable reports a backing store outage.
func ServiceUnavailable(msg string) *AppError {
	return New(http.StatusServiceUnavailable, CodeUnavailable, msg)
}

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError
	}
	return nil
}
