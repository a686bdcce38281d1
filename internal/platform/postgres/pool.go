// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package postgres owns the pgx connection pool behind the PostgreSQL
credential store. The store itself lives with the auth and account
domains; this package only dials, tunes and probes.
*/
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ultimatemercer/identity/internal/platform/constants"
)

const (
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
	maxConnLifetime   = time.Hour
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = time.Minute
)

// Settings sizes the pool. Zero MaxConns keeps the pgx default.
type Settings struct {
	URL      string
	MaxConns int32
	MinConns int32
}

/*
NewPool dials PostgreSQL and fails fast when it does not answer.

Every physical connection is tagged with the application name and gets a
statement_timeout equal to the request deadline, so an abandoned request
cannot hold a row lock on auth past its own lifetime.

Parameters:
  - context: context.Context (bounds the first dial)
  - settings: Settings
  - logger: *slog.Logger

Returns:
  - *pgxpool.Pool
  - error: Invalid URL or unreachable server
*/
func NewPool(context context.Context, settings Settings, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(settings.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres_invalid_url: %w", err)
	}

	if settings.MaxConns > 0 {
		poolConfig.MaxConns = settings.MaxConns
		poolConfig.MinConns = min(settings.MinConns, settings.MaxConns)
	}
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout
	poolConfig.ConnConfig.RuntimeParams["application_name"] = constants.AppName
	poolConfig.AfterConnect = applyStatementTimeout

	pool, err := pgxpool.NewWithConfig(context, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres_pool_create_failed: %w", err)
	}

	if err := Ping(context, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.String("database", poolConfig.ConnConfig.Database),
		slog.Int("max_conns", int(poolConfig.MaxConns)),
	)
	return pool, nil
}

func applyStatementTimeout(context context.Context, connection *pgx.Conn) error {
	statement := fmt.Sprintf("SET statement_timeout = %d", constants.GlobalRequestTimeout.Milliseconds())
	_, err := connection.Exec(context, statement)
	return err
}

// Ping probes the pool with a bounded round trip.
func Ping(parent context.Context, pool *pgxpool.Pool) error {
	probe, cancel := context.WithTimeout(parent, pingTimeout)
	defer cancel()

	if err := pool.Ping(probe); err != nil {
		return fmt.Errorf("postgres_ping_failed: %w", err)
	}
	return nil
}
