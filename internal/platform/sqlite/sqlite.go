// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sqlite opens the embedded (modernc, pure Go) credential store used
// by single-node deployments, the admin CLI and the test-suite.
//
// # Concurrency
//
// The handle is limited to one open connection and every transaction starts
// with BEGIN IMMEDIATE, so writers queue inside database/sql instead of
// failing with SQLITE_BUSY. busy_timeout covers other processes sharing the file.
package sqlite

import (
	stdctx "context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	// registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver registered by modernc.org/sqlite.
	DriverName = "sqlite"

	busyTimeout = 5 * time.Second
	pingTimeout = 2 * time.Second
)

// DSN builds the connection string for path with the pragmas the store relies on.
func DSN(path string) string {
	query := url.Values{}
	query.Add("_pragma", "foreign_keys(1)")
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	query.Add("_pragma", "journal_mode(WAL)")
	query.Add("_pragma", "synchronous(NORMAL)")
	query.Set("_txlock", "immediate")
	query.Set("_time_format", "sqlite")

	return path + "?" + query.Encode()
}

// Open creates the parent directory if needed, opens the database file and
// verifies it answers.
//
// # Parameters
//   - context: Context for the initial ping.
//   - path: Filesystem path of the database file.
//   - logger: Structured logger for connection events.
func Open(context stdctx.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if directory := filepath.Dir(cleanPath); directory != "." {
		if err := os.MkdirAll(directory, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite: failed to create data directory: %w", err)
		}
	}

	database, err := sql.Open(DriverName, DSN(cleanPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open: %w", err)
	}

	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)
	database.SetConnMaxLifetime(0)

	if err := Ping(context, database); err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Info("sqlite store opened", slog.String("path", cleanPath))

	return database, nil
}

// Ping verifies that the database handle is healthy.
func Ping(context stdctx.Context, database *sql.DB) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := database.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}
