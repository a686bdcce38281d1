// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package app builds the storage and service graph shared by the API server
and the admin CLI from a loaded [config.Config].
*/
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ultimatemercer/identity/internal/platform/config"
	"github.com/ultimatemercer/identity/internal/platform/constants"
	"github.com/ultimatemercer/identity/internal/platform/migration"
	pgstore "github.com/ultimatemercer/identity/internal/platform/postgres"
	"github.com/ultimatemercer/identity/internal/platform/sec"
	"github.com/ultimatemercer/identity/internal/platform/sqlite"
	"github.com/ultimatemercer/identity/internal/users/account"
	"github.com/ultimatemercer/identity/internal/users/auth"
)

// Stores is the durable storage selected by STORE_DRIVER.
type Stores struct {
	Driver      string
	Credentials auth.CredentialStore
	Profiles    account.ProfileRepository

	// Ping probes the underlying engine.
	Ping func(context.Context) error

	// OpenConnections samples the size of the connection pool.
	OpenConnections func() int

	// Close releases the pool or file handle.
	Close func()
}

// MigrationTarget returns the migration target for the configured driver.
func MigrationTarget(cfg *config.Config) migration.Target {
	if cfg.StoreDriver == config.DriverSQLite {
		return migration.Target{Driver: config.DriverSQLite, DSN: cfg.SQLitePath}
	}
	return migration.Target{Driver: config.DriverPostgres, DSN: cfg.DatabaseURL}
}

/*
OpenStores connects to the configured engine.

Parameters:
  - ctx: context.Context (bounds the connection attempt)
  - cfg: *config.Config
  - logger: *slog.Logger

Returns:
  - *Stores: Repositories over one shared connection
  - error: Connection failures
*/
func OpenStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		database, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}

		return &Stores{
			Driver:          config.DriverSQLite,
			Credentials:     auth.NewSQLiteStore(database),
			Profiles:        account.NewSQLiteRepository(database),
			Ping:            func(ctx context.Context) error { return sqlite.Ping(ctx, database) },
			OpenConnections: func() int { return database.Stats().OpenConnections },
			Close: func() {
				if err := database.Close(); err != nil {
					logger.Error("sqlite_close_failed", slog.Any("error", err))
				}
			},
		}, nil

	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, pgstore.Settings{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DatabaseMaxConns,
			MinConns: cfg.DatabaseMinConns,
		}, logger)
		if err != nil {
			return nil, err
		}

		return &Stores{
			Driver:          config.DriverPostgres,
			Credentials:     auth.NewPostgresStore(pool),
			Profiles:        account.NewPostgresRepository(pool),
			Ping:            func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
			OpenConnections: func() int { return int(pool.Stat().TotalConns()) },
			Close:           pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("app_unknown_store_driver: %q", cfg.StoreDriver)
}

// NewTokenService creates the access token signer from configuration.
func NewTokenService(cfg *config.Config) (*sec.TokenService, error) {
	return sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
}

/*
NewAuthService wires the credential service.

Parameters:
  - cfg: *config.Config
  - stores: *Stores
  - cache: *redis.Client (nil disables verification tokens and 2FA setup)
  - tokens: auth.TokenIssuer (may be nil for offline tools)
  - recorder: auth.Recorder (may be nil)
  - logger: *slog.Logger

Returns:
  - *auth.Service
*/
func NewAuthService(cfg *config.Config, stores *Stores, cache *redis.Client, tokens auth.TokenIssuer, recorder auth.Recorder, logger *slog.Logger) *auth.Service {
	dependencies := auth.Dependencies{
		Store:    stores.Credentials,
		Hasher:   sec.NewHasher(cfg.PasswordHashIterations),
		Tokens:   tokens,
		Recorder: recorder,
		Logger:   logger,
		Options: auth.Options{
			AccessTokenTTL: cfg.AccessTokenTTL,
			ResetTokenTTL:  cfg.ResetTokenTTL,
			TOTPIssuer:     cfg.TOTPIssuer,
		},
	}

	if cache != nil {
		tokenStore := auth.NewRedisTokenStore(cache)
		dependencies.Verifications = tokenStore
		dependencies.PendingTwoFactor = tokenStore
	}

	return auth.NewService(dependencies)
}
