// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api is the HTTP composition root of the identity service: the chi
router, the middleware chain and the probe, metrics and domain routes.

Route map:

	GET  /health            liveness
	GET  /ready             readiness of every backing store
	GET  /metrics           Prometheus exposition
	     /api/v1/auth/...   credential lifecycle
	     /api/v1/account/.. profiles
*/
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ultimatemercer/identity/internal/platform/config"
	"github.com/ultimatemercer/identity/internal/platform/constants"
	"github.com/ultimatemercer/identity/internal/platform/middleware"
	"github.com/ultimatemercer/identity/internal/users/account"
	"github.com/ultimatemercer/identity/internal/users/auth"
)

// Handlers groups the route handlers mounted by [NewServer].
type Handlers struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc

	// Metrics is optional; /metrics is not mounted without it.
	Metrics http.Handler

	Auth *auth.Handler

	// Account is optional; /api/v1/account is not mounted without it.
	Account *account.Handler
}

// Instrumentation wraps every request, e.g. [metrics.Metrics.Middleware].
type Instrumentation func(http.Handler) http.Handler

// Server owns the router and the listening [http.Server].
type Server struct {
	router     chi.Router
	httpServer *http.Server
	log        *slog.Logger
}

/*
NewServer builds the router.

Middleware order matters: the request ID and logger come first so every
later rejection (rate limit, CORS, bad bearer token) is logged and counted
with its request ID.

Parameters:
  - cfg: *config.Config (port, CORS policy)
  - log: *slog.Logger
  - tokens: middleware.AccessTokenParser
  - limiter: *middleware.RateLimiter (nil disables rate limiting)
  - instrument: Instrumentation (nil disables request metrics)
  - h: Handlers

Returns:
  - *Server
*/
func NewServer(cfg *config.Config, log *slog.Logger, tokens middleware.AccessTokenParser, limiter *middleware.RateLimiter, instrument Instrumentation, h Handlers) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID(), middleware.StructuredLogger(log))
	if instrument != nil {
		router.Use(instrument)
	}
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	if limiter != nil {
		router.Use(limiter.Middleware)
	}
	router.Use(
		middleware.PanicRecovery(log),
		middleware.CORS(cfg, cfg.AllowedOriginSuffix),
		middleware.Authenticate(tokens),
		chimw.CleanPath,
	)

	// # Probes
	router.Get("/health", h.Liveness)
	router.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// # Identity API
	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Mount("/auth", h.Auth.Routes())
		if h.Account != nil {
			v1.Mount("/account", h.Account.Routes())
		}
	})

	return &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router for in-process tests.
func (server *Server) Handler() http.Handler {
	return server.router
}

/*
Run serves until context is cancelled, then drains in-flight requests for
at most [constants.ShutdownTimeout].

Returns:
  - error: A listen failure, or a drain that did not finish in time
*/
func (server *Server) Run(context context.Context) error {
	listenErr := make(chan error, 1)
	go func() {
		server.log.Info("server_starting", slog.String("addr", server.httpServer.Addr))
		listenErr <- server.httpServer.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-context.Done():
	}

	server.log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	drainContext, cancel := drainWindow()
	defer cancel()
	return server.httpServer.Shutdown(drainContext)
}

func drainWindow() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), constants.ShutdownTimeout)
}
