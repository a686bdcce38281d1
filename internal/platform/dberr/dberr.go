// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr classifies engine-level errors from PostgreSQL (pgx) and
// SQLite (modernc) into the few categories repositories care about:
// missing rows, unique-constraint violations, and store outages.
package dberr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const sqliteUniquePrefix = "unique constraint failed: "

// IsNoRows reports whether err means the query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// UniqueViolation reports whether err is a unique or primary-key violation.
//
// The returned target names what collided: the constraint name for
// PostgreSQL ("auth_email_idx") or the column list for SQLite
// ("auth.email"). It may be empty when the engine does not say.
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	// 1. PostgreSQL SQLSTATE 23505
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgerrcode.UniqueViolation {
			return pgErr.ConstraintName, true
		}
		return "", false
	}

	// 2. SQLite extended constraint codes
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return sqliteTarget(sqliteErr.Error()), true
		}
		return "", false
	}

	return "", false
}

// IsUnavailable reports whether err means the store could not be reached or
// could not serve the request in time. Such failures are worth a retry by
// the caller; they say nothing about the data.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	if pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgerrcode.IsOperatorIntervention(pgErr.Code) ||
			pgerrcode.IsInsufficientResources(pgErr.Code)
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		primary := sqliteErr.Code() & 0xff
		return primary == sqlite3lib.SQLITE_BUSY || primary == sqlite3lib.SQLITE_LOCKED
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// sqliteTarget extracts "table.column[, table.column]" from a SQLite
// constraint message.
func sqliteTarget(message string) string {
	lower := strings.ToLower(message)
	index := strings.Index(lower, sqliteUniquePrefix)
	if index < 0 {
		return ""
	}

	target := message[index+len(sqliteUniquePrefix):]
	if end := strings.Index(target, " ("); end >= 0 {
		target = target[:end]
	}
	return strings.TrimSpace(target)
}
