// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
	"github.com/ultimatemercer/identity/internal/platform/respond"
)

type presentedError struct{}

func (presentedError) Error() string { return "domain failure" }

func (presentedError) AppError() *apperr.AppError {
	return apperr.Conflict("Email is already registered")
}

/*
TestError resolves app errors, presenters and unknown errors.
*/
func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"app_error", apperr.NotFound("Identity"), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped_app_error", fmt.Errorf("ctx: %w", apperr.Unauthorized("no")), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"presenter", fmt.Errorf("ctx: %w", presentedError{}), http.StatusConflict, "CONFLICT"},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, recorder.Code)

			var envelope respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, tt.code, envelope.Code)
			assert.NotContains(t, envelope.Error, "db exploded")
		})
	}
}

/*
TestCreated wraps the payload in the data envelope.
*/
func TestCreated(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Created(recorder, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"data":{"id":"1"}}`, recorder.Body.String())
}
