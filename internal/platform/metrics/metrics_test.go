// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultimatemercer/identity/internal/platform/metrics"
	"github.com/ultimatemercer/identity/internal/users/auth"
)

var _ auth.Recorder = (*metrics.Metrics)(nil)

/*
TestMetrics_Recorder counts outcomes per label.
*/
func TestMetrics_Recorder(t *testing.T) {
	m := metrics.New()

	m.ObserveRegistration("success")
	m.ObserveRegistration("username_taken")
	m.ObserveRegistration("username_taken")
	m.ObserveLogin("invalid_credential")
	m.ObservePasswordHash(10 * time.Millisecond)
	m.ObserveReadiness("database", false)

	expected := `
# HELP identity_registrations_total Registration attempts by outcome.
# TYPE identity_registrations_total counter
identity_registrations_total{outcome="success"} 1
identity_registrations_total{outcome="username_taken"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "identity_registrations_total"))

	count, err := testutil.GatherAndCount(m.Registry(), "identity_logins_total", "identity_password_hash_duration_seconds", "identity_readiness_checks_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

/*
TestMetrics_Middleware labels requests by route pattern and serves them.
*/
func TestMetrics_Middleware(t *testing.T) {
	m := metrics.New()

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/profiles/{id}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	})
	router.Method(http.MethodGet, "/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/profiles/"+id, nil))
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	body := recorder.Body.String()
	assert.Contains(t, body, `identity_http_requests_total{method="GET",route="/profiles/{id}",status="404"} 2`)
	assert.Contains(t, body, "go_goroutines")
}

/*
TestMetrics_TrackConnections samples the pool at scrape time.
*/
func TestMetrics_TrackConnections(t *testing.T) {
	m := metrics.New()
	open := 3
	m.TrackConnections("sqlite", func() int { return open })

	expected := `
# HELP identity_store_open_connections Open connections to the credential store.
# TYPE identity_store_open_connections gauge
identity_store_open_connections{driver="sqlite"} %d
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(fmt.Sprintf(expected, 3)), "identity_store_open_connections"))

	open = 1
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(fmt.Sprintf(expected, 1)), "identity_store_open_connections"))
}
