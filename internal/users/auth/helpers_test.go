// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ultimatemercer/identity/internal/platform/config"
	"github.com/ultimatemercer/identity/internal/platform/migration"
	"github.com/ultimatemercer/identity/internal/platform/sec"
	"github.com/ultimatemercer/identity/internal/platform/sqlite"
	"github.com/ultimatemercer/identity/internal/users/auth"
)

const testIterations = 1000

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// newSQLiteStore returns a migrated store on a temp file and its raw handle.
func newSQLiteStore(t *testing.T) (*auth.SQLiteStore, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "identity.db")
	require.NoError(t, migration.RunUp(migration.Target{Driver: config.DriverSQLite, DSN: path}, discardLogger))

	database, err := sqlite.Open(context.Background(), path, discardLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return auth.NewSQLiteStore(database), database
}

// newTokenStore returns a Redis token store on an in-process server.
func newTokenStore(t *testing.T) (*auth.RedisTokenStore, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return auth.NewRedisTokenStore(client), server
}

// recordingNotifier keeps the last token of each kind.
type recordingNotifier struct {
	mu           sync.Mutex
	verification map[string]string
	reset        map[string]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{verification: map[string]string{}, reset: map[string]string{}}
}

func (notifier *recordingNotifier) SendVerification(_ context.Context, identity *auth.Identity, token string) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.verification[identity.Auth.Email] = token
	return nil
}

func (notifier *recordingNotifier) SendPasswordReset(_ context.Context, identity *auth.Identity, token string) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.reset[identity.Auth.Email] = token
	return nil
}

func (notifier *recordingNotifier) resetToken(email string) string {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return notifier.reset[email]
}

func (notifier *recordingNotifier) verificationToken(email string) string {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return notifier.verification[email]
}

// countingRecorder counts outcomes per flow.
type countingRecorder struct {
	mu            sync.Mutex
	registrations map[string]int
	logins        map[string]int
	hashes        int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{registrations: map[string]int{}, logins: map[string]int{}}
}

func (recorder *countingRecorder) ObserveRegistration(outcome string) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.registrations[outcome]++
}

func (recorder *countingRecorder) ObserveLogin(outcome string) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.logins[outcome]++
}

func (recorder *countingRecorder) ObservePasswordHash(time.Duration) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.hashes++
}

type fixture struct {
	service  *auth.Service
	store    *auth.SQLiteStore
	database *sql.DB
	tokens   *sec.TokenService
	notifier *recordingNotifier
	recorder *countingRecorder
}

// newFixture wires a service over SQLite and miniredis with cheap hashing.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, database := newSQLiteStore(t)
	tokenStore, _ := newTokenStore(t)

	tokens, err := sec.NewTokenService("test-secret", "identity.test")
	require.NoError(t, err)

	notifier := newRecordingNotifier()
	recorder := newCountingRecorder()

	service := auth.NewService(auth.Dependencies{
		Store:            store,
		Verifications:    tokenStore,
		PendingTwoFactor: tokenStore,
		Hasher:           sec.NewHasher(testIterations),
		Tokens:           tokens,
		Notifier:         notifier,
		Recorder:         recorder,
		Logger:           discardLogger,
		Options:          auth.Options{TOTPIssuer: "identity-test"},
	})

	return &fixture{
		service:  service,
		store:    store,
		database: database,
		tokens:   tokens,
		notifier: notifier,
		recorder: recorder,
	}
}
