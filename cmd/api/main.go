// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the identity HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the credential store (PostgreSQL or SQLite).
//  4. Run database migrations (idempotent).
//  5. Connect to Redis.
//  6. Wire services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ultimatemercer/identity/internal/api"
	"github.com/ultimatemercer/identity/internal/app"
	"github.com/ultimatemercer/identity/internal/platform/config"
	"github.com/ultimatemercer/identity/internal/platform/constants"
	"github.com/ultimatemercer/identity/internal/platform/metrics"
	"github.com/ultimatemercer/identity/internal/platform/middleware"
	"github.com/ultimatemercer/identity/internal/platform/migration"
	redisstore "github.com/ultimatemercer/identity/internal/platform/redis"
	"github.com/ultimatemercer/identity/internal/users/account"
	"github.com/ultimatemercer/identity/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("port", cfg.ServerPort),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	// ── 3. Credential Store ───────────────────────────────────────────────
	stores, err := app.OpenStores(startupCtx, cfg, log)
	must(log, err, "open credential store")
	defer stores.Close()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(app.MigrationTarget(cfg), log), "run migrations")

	// ── 5. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, cfg.RedisPoolSize, log)
	must(log, err, "connect to redis")
	defer func() {
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 6. Services & Handlers ────────────────────────────────────────────
	tokens, err := app.NewTokenService(cfg)
	must(log, err, "initialize jwt service")

	instruments := metrics.New()
	instruments.TrackConnections(stores.Driver, stores.OpenConnections)
	authService := app.NewAuthService(cfg, stores, rdb, tokens, instruments, log)
	accountService := account.NewService(stores.Profiles, log)

	liveness, readiness := api.NewHealthHandlers([]api.Check{
		{Name: stores.Driver, Probe: stores.Ping},
		{Name: "redis", Probe: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}, instruments, log)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(rootCtx)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(cfg, log, tokens, limiter, instruments.Middleware, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   instruments.Handler(),
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService),
	})

	if err := server.Run(rootCtx); err != nil {
		log.Error("server_stopped_with_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
