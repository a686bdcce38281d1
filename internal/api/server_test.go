// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultimatemercer/identity/internal/api"
	"github.com/ultimatemercer/identity/internal/platform/config"
	"github.com/ultimatemercer/identity/internal/platform/metrics"
	"github.com/ultimatemercer/identity/internal/platform/middleware"
	"github.com/ultimatemercer/identity/internal/platform/migration"
	"github.com/ultimatemercer/identity/internal/platform/sec"
	"github.com/ultimatemercer/identity/internal/platform/sqlite"
	"github.com/ultimatemercer/identity/internal/users/account"
	"github.com/ultimatemercer/identity/internal/users/auth"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newServer(t *testing.T, checks []api.Check, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()

	path := filepath.Join(t.TempDir(), "identity.db")
	require.NoError(t, migration.RunUp(migration.Target{Driver: config.DriverSQLite, DSN: path}, discardLogger))
	database, err := sqlite.Open(context.Background(), path, discardLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	tokens, err := sec.NewTokenService("test-secret", "identity.test")
	require.NoError(t, err)

	m := metrics.New()
	authService := auth.NewService(auth.Dependencies{
		Store:    auth.NewSQLiteStore(database),
		Hasher:   sec.NewHasher(1000),
		Tokens:   tokens,
		Recorder: m,
		Logger:   discardLogger,
	})

	liveness, readiness := api.NewHealthHandlers(checks, m, discardLogger)
	cfg := &config.Config{ServerPort: "0", Environment: "test", AllowedOriginSuffix: ".example.com"}

	server := api.NewServer(cfg, discardLogger, tokens, limiter, m.Middleware, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   m.Handler(),
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(account.NewService(account.NewSQLiteRepository(database), discardLogger)),
	})
	return server.Handler()
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
	return recorder
}

/*
TestServer_Probes covers liveness, readiness and metrics exposure.
*/
func TestServer_Probes(t *testing.T) {
	healthy := []api.Check{{Name: "database", Probe: func(context.Context) error { return nil }}}
	failing := append(healthy, api.Check{Name: "redis", Probe: func(context.Context) error { return errors.New("connection refused") }})

	t.Run("liveness", func(t *testing.T) {
		recorder := get(newServer(t, failing, nil), "/health")
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("ready", func(t *testing.T) {
		recorder := get(newServer(t, healthy, nil), "/ready")
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"ready"`)
	})

	t.Run("degraded", func(t *testing.T) {
		handler := newServer(t, failing, nil)
		recorder := get(handler, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"degraded"`)

		exposition := get(handler, "/metrics").Body.String()
		assert.Contains(t, exposition, `identity_readiness_checks_total{dependency="redis",result="failure"} 1`)
	})
}

/*
TestServer_RegisterThroughStack drives a registration through the full
middleware chain.
*/
func TestServer_RegisterThroughStack(t *testing.T) {
	handler := newServer(t, nil, nil)

	body, err := json.Marshal(map[string]string{"email": "a@x.com", "username": "alice01", "password": "Abcdef12"})
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	exposition := get(handler, "/metrics").Body.String()
	assert.Contains(t, exposition, `identity_registrations_total{outcome="success"} 1`)
	assert.Contains(t, exposition, `route="/api/v1/auth/register"`)

	assert.Equal(t, http.StatusUnauthorized, get(handler, "/api/v1/account/profile").Code)
}

/*
TestServer_CORS allows only configured origins outside development.
*/
func TestServer_CORS(t *testing.T) {
	handler := newServer(t, nil, nil)

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://app.example.com", true},
		{"https://evil.test", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
			request.Header.Set("Origin", tt.origin)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusNoContent, recorder.Code)
			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

/*
TestServer_RateLimit rejects bursts above the limit.
*/
func TestServer_RateLimit(t *testing.T) {
	handler := newServer(t, nil, middleware.NewRateLimiter(0.001, 2))

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, get(handler, "/health").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
