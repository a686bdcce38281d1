// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultimatemercer/identity/internal/platform/config"
	"github.com/ultimatemercer/identity/internal/platform/migration"
	"github.com/ultimatemercer/identity/internal/platform/sqlite"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

/*
TestRunUp_SQLite applies the embedded schema and is idempotent.
*/
func TestRunUp_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.db")
	target := migration.Target{Driver: config.DriverSQLite, DSN: path}

	require.NoError(t, migration.RunUp(target, discardLogger))
	require.NoError(t, migration.RunUp(target, discardLogger), "second run is a no-op")

	version, dirty, err := migration.Version(target, discardLogger)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	database, err := sqlite.Open(context.Background(), path, discardLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	for _, table := range []string{"auth", "auth_providers", "users", "password_resets", "two_factor_auth"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

/*
TestRunUp_UnknownDriver refuses engines without migrations.
*/
func TestRunUp_UnknownDriver(t *testing.T) {
	err := migration.RunUp(migration.Target{Driver: "mysql", DSN: "x"}, discardLogger)
	assert.ErrorContains(t, err, "unsupported driver")
}
