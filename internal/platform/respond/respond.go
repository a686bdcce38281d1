// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package respond writes the JSON envelopes of the identity API.

Successful bodies are wrapped as {"data": ...}. Failures are rendered from
an [apperr.AppError] (or a domain error presenting one) as
{"error", "code", "details", "request_id"}, so a client can quote the
request ID when reporting a problem.
*/
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
	"github.com/ultimatemercer/identity/internal/platform/constants"
	"github.com/ultimatemercer/identity/internal/platform/ctxutil"
)

// retryAfterSeconds is advertised when a backing store is unavailable.
const retryAfterSeconds = "5"

// SuccessEnvelope wraps every successful payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the body of every failed request.
type ErrorEnvelope struct {
	Error     string              `json:"error"`
	Code      string              `json:"code"`
	Details   []apperr.FieldError `json:"details,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// Presenter is implemented by domain errors that know their transport form.
type Presenter interface {
	AppError() *apperr.AppError
}

// JSON writes payload with statusCode.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes 200 with data.
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

// Created writes 201 with data.
func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Data: data})
}

// Accepted writes 202 with data, for work whose outcome is not disclosed.
func Accepted(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusAccepted, SuccessEnvelope{Data: data})
}

// NoContent writes 204.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

/*
Error renders err as an [ErrorEnvelope].

An [*apperr.AppError] in the chain wins, then a [Presenter]. Anything else
is logged and hidden behind a generic 500.
*/
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	context := request.Context()
	logger := ctxutil.GetLogger(context)

	appError := resolve(err)
	if appError == nil {
		logger.ErrorContext(context, "unhandled_error_swallowed", slog.Any("error", err))
		appError = apperr.Internal(err)
	}

	switch {
	case appError.HTTPStatus == http.StatusServiceUnavailable:
		writer.Header().Set(constants.HeaderRetryAfter, retryAfterSeconds)
		logger.WarnContext(context, "dependency_unavailable", slog.Any("cause", appError.Cause))
	case appError.HTTPStatus >= 500:
		logger.ErrorContext(context, "api_server_error",
			slog.String("code", appError.Code),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:     appError.Message,
		Code:      appError.Code,
		Details:   appError.Details,
		RequestID: ctxutil.GetRequestID(context),
	})
}

func resolve(err error) *apperr.AppError {
	if appError := apperr.As(err); appError != nil {
		return appError
	}

	var presenter Presenter
	if errors.As(err, &presenter) {
		return presenter.AppError()
	}
	return nil
}
