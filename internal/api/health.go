// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ultimatemercer/identity/internal/platform/constants"
	"github.com/ultimatemercer/identity/internal/platform/respond"
)

// readinessTimeout bounds each dependency probe.
const readinessTimeout = 2 * time.Second

// Check is one dependency probed by /ready.
type Check struct {
	Name  string
	Probe func(context.Context) error
}

// ReadinessObserver receives probe results. [metrics.Metrics] satisfies it.
type ReadinessObserver interface {
	ObserveReadiness(dependency string, healthy bool)
}

type healthHandler struct {
	checks   []Check
	observer ReadinessObserver
	logger   *slog.Logger
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
// observer may be nil.
func NewHealthHandlers(checks []Check, observer ReadinessObserver, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{checks: checks, observer: observer, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// readiness handles GET /ready (Readiness probe).
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	type checkResult struct {
		Name  string `json:"name"`
		IsOK  bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	results := make([]checkResult, 0, len(handler.checks))
	isSystemReady := true

	for _, check := range handler.checks {
		probeContext, cancel := context.WithTimeout(request.Context(), readinessTimeout)
		err := check.Probe(probeContext)
		cancel()

		result := checkResult{Name: check.Name, IsOK: err == nil}
		if err != nil {
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.Error("readiness_check_failed", slog.String("dependency", check.Name), slog.Any("error", err))
		}
		if handler.observer != nil {
			handler.observer.ObserveReadiness(check.Name, err == nil)
		}
		results = append(results, result)
	}

	responseStatus, httpStatus := "ready", http.StatusOK
	if !isSystemReady {
		responseStatus, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus: responseStatus,
		constants.FieldChecks: results,
	}})
}
