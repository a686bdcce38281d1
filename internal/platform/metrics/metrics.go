// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus instruments for the identity API.

A [Metrics] owns its registry so tests and multiple servers in one process
do not collide on the global default registerer.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ultimatemercer/identity/internal/platform/middleware"
)

const namespace = "identity"

// Metrics groups every instrument exported by the service.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	registrations    *prometheus.CounterVec
	logins           *prometheus.CounterVec
	hashDuration     prometheus.Histogram
	readinessResults *prometheus.CounterVec
}

// New registers all instruments, plus the Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route, and response status.",
		}, []string{"method", "route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),

		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),

		hashDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "password_hash_duration_seconds",
			Help:      "Time spent deriving password hashes.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),

		readinessResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readiness_checks_total",
			Help:      "Readiness probes by dependency and result.",
		}, []string{"dependency", "result"}),
	}
}

// TrackConnections exports open(), sampled at scrape time, as the number
// of open store connections for driver.
func (metrics *Metrics) TrackConnections(driver string, open func() int) {
	promauto.With(metrics.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "store_open_connections",
		Help:        "Open connections to the credential store.",
		ConstLabels: prometheus.Labels{"driver": driver},
	}, func() float64 { return float64(open()) })
}

// Registry returns the underlying registry.
func (metrics *Metrics) Registry() *prometheus.Registry {
	return metrics.registry
}

// # Recorder

// ObserveRegistration counts a registration outcome.
func (metrics *Metrics) ObserveRegistration(outcome string) {
	metrics.registrations.WithLabelValues(outcome).Inc()
}

// ObserveLogin counts a login outcome.
func (metrics *Metrics) ObserveLogin(outcome string) {
	metrics.logins.WithLabelValues(outcome).Inc()
}

// ObservePasswordHash records one hash derivation.
func (metrics *Metrics) ObservePasswordHash(elapsed time.Duration) {
	metrics.hashDuration.Observe(elapsed.Seconds())
}

// ObserveReadiness counts a readiness probe result for one dependency.
func (metrics *Metrics) ObserveReadiness(dependency string, healthy bool) {
	result := "success"
	if !healthy {
		result = "failure"
	}
	metrics.readinessResults.WithLabelValues(dependency, result).Inc()
}

// # HTTP

// Middleware records per-request metrics labelled by the chi route pattern,
// so path parameters do not explode label cardinality.
func (metrics *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		start := time.Now()
		recorder := &middleware.StatusRecorder{ResponseWriter: writer, Status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		metrics.requestsTotal.WithLabelValues(request.Method, route, strconv.Itoa(recorder.Status)).Inc()
		metrics.requestDuration.WithLabelValues(request.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (metrics *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{Registry: metrics.registry})
}
