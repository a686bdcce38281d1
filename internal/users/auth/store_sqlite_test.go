// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultimatemercer/identity/internal/users/auth"
	"github.com/ultimatemercer/identity/pkg/pointer"
)

func credential(email, username string) auth.NewCredential {
	return auth.NewCredential{
		Email:        email,
		Username:     username,
		PasswordHash: pointer.To("hash"),
		PasswordSalt: pointer.To("salt"),
	}
}

/*
TestSQLiteStore_CreateAndFind persists the paired rows and finds them by
either identifier.
*/
func TestSQLiteStore_CreateAndFind(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()

	created, err := store.CreateIdentity(ctx, credential("a@x.com", "alice01"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.Auth.ID)
	assert.NotEmpty(t, created.Profile.ID)
	assert.NotEqual(t, created.Auth.ID, created.Profile.ID)

	for _, identifier := range []string{"a@x.com", "alice01"} {
		t.Run(identifier, func(t *testing.T) {
			found, err := store.FindIdentity(ctx, identifier)
			require.NoError(t, err)
			require.NotNil(t, found)

			assert.Equal(t, created.Auth.ID, found.Auth.ID)
			assert.Equal(t, created.Auth.ID, found.Profile.AuthID)
			assert.Equal(t, "alice01", found.Profile.Username)
			assert.True(t, found.Auth.IsActive)
			assert.False(t, found.Auth.EmailVerified)
			assert.False(t, found.Auth.TwoFactorEnabled)
			assert.Equal(t, "hash", pointer.Val(found.Auth.PasswordHash))
			assert.Equal(t, auth.DefaultTimezone, found.Profile.Timezone)
			assert.Equal(t, auth.DefaultLanguage, found.Profile.Language)
			assert.Equal(t, auth.DefaultTheme, found.Profile.Theme)
			assert.Equal(t, auth.DefaultVisibility, found.Profile.ProfileVisibility)
			assert.NotNil(t, found.Profile.SocialLinks.Custom)
			assert.Empty(t, found.Auth.Providers)
			assert.True(t, created.Auth.CreatedAt.Equal(found.Auth.CreatedAt))
		})
	}

	t.Run("no_match", func(t *testing.T) {
		found, err := store.FindIdentity(ctx, "nobody")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("case_sensitive", func(t *testing.T) {
		found, err := store.FindIdentity(ctx, "ALICE01")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}

/*
TestSQLiteStore_FindIdentityPrefersEmail resolves an identifier that is one
row's email and another row's username to the email owner.
*/
func TestSQLiteStore_FindIdentityPrefersEmail(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()

	_, err := store.CreateIdentity(ctx, credential("other@x.com", "shared@x.com"))
	require.NoError(t, err)
	owner, err := store.CreateIdentity(ctx, credential("shared@x.com", "owner"))
	require.NoError(t, err)

	found, err := store.FindIdentity(ctx, "shared@x.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, owner.Auth.ID, found.Auth.ID)
}

/*
TestSQLiteStore_CreateDuplicates classifies unique violations by field.
*/
func TestSQLiteStore_CreateDuplicates(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()

	base := credential("a@x.com", "alice01")
	base.Providers = []auth.ProviderLink{{Provider: auth.ProviderGithub, ProviderID: "42"}}
	_, err := store.CreateIdentity(ctx, base)
	require.NoError(t, err)

	withProvider := credential("b@x.com", "bob01")
	withProvider.Providers = []auth.ProviderLink{{Provider: auth.ProviderGithub, ProviderID: "42"}}

	tests := []struct {
		name       string
		credential auth.NewCredential
		field      string
	}{
		{"email", credential("a@x.com", "other"), auth.FieldEmail},
		{"username", credential("c@x.com", "alice01"), auth.FieldUsername},
		{"provider", withProvider, auth.FieldProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateIdentity(ctx, tt.credential)
			require.Error(t, err)
			assert.ErrorIs(t, err, auth.ErrDuplicateIdentity)

			var authErr *auth.Error
			require.True(t, errors.As(err, &authErr))
			assert.Equal(t, tt.field, authErr.Field)
		})
	}
}

/*
TestSQLiteStore_CreateIsAtomic injects a fault between the two inserts and
checks that no auth row survives.
*/
func TestSQLiteStore_CreateIsAtomic(t *testing.T) {
	store, database := newSQLiteStore(t)
	ctx := context.Background()

	fault := errors.New("simulated store fault")
	auth.SetAfterAuthInsert(store, func(context.Context) error { return fault })

	_, err := store.CreateIdentity(ctx, credential("a@x.com", "alice01"))
	require.ErrorIs(t, err, fault)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM auth`).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Zero(t, count)

	auth.SetAfterAuthInsert(store, nil)
	_, err = store.CreateIdentity(ctx, credential("a@x.com", "alice01"))
	assert.NoError(t, err, "identifiers are free again after the rollback")
}

/*
TestSQLiteStore_Providers links, lists and resolves OAuth accounts.
*/
func TestSQLiteStore_Providers(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()

	oauthOnly := auth.NewCredential{
		Email:     "g@x.com",
		Username:  "gina",
		Providers: []auth.ProviderLink{{Provider: auth.ProviderGoogle, ProviderID: "g-1"}},
	}
	created, err := store.CreateIdentity(ctx, oauthOnly)
	require.NoError(t, err)
	assert.False(t, created.Auth.HasPassword())

	require.NoError(t, store.LinkProvider(ctx, created.Auth.ID,
		auth.ProviderLink{Provider: auth.ProviderDiscord, ProviderID: "d-1"}))

	err = store.LinkProvider(ctx, created.Auth.ID, auth.ProviderLink{Provider: auth.ProviderGoogle, ProviderID: "g-2"})
	assert.ErrorIs(t, err, auth.ErrDuplicateIdentity, "one identity per provider per account")

	found, err := store.FindByProvider(ctx, auth.ProviderLink{Provider: auth.ProviderDiscord, ProviderID: "d-1"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.Auth.ID, found.Auth.ID)
	assert.ElementsMatch(t, []auth.ProviderLink{
		{Provider: auth.ProviderGoogle, ProviderID: "g-1"},
		{Provider: auth.ProviderDiscord, ProviderID: "d-1"},
	}, found.Auth.Providers)

	missing, err := store.FindByProvider(ctx, auth.ProviderLink{Provider: auth.ProviderGithub, ProviderID: "g-1"})
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

/*
TestSQLiteStore_PasswordResetPair rejects inserting half a credential.
*/
func TestSQLiteStore_PasswordResetPair(t *testing.T) {
	store, _ := newSQLiteStore(t)

	half := auth.NewCredential{Email: "h@x.com", Username: "half", PasswordHash: pointer.To("hash")}
	_, err := store.CreateIdentity(context.Background(), half)
	assert.Error(t, err)
}

/*
TestSQLiteStore_ConsumePasswordReset redeems a token once and only while it
is unexpired.
*/
func TestSQLiteStore_ConsumePasswordReset(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	identity, err := store.CreateIdentity(ctx, credential("a@x.com", "alice01"))
	require.NoError(t, err)

	live := &auth.PasswordReset{AuthID: identity.Auth.ID, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}
	expired := &auth.PasswordReset{AuthID: identity.Auth.ID, TokenHash: "expired", ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, store.CreatePasswordReset(ctx, live))
	require.NoError(t, store.CreatePasswordReset(ctx, expired))
	assert.NotEmpty(t, live.ID)

	authID, err := store.ConsumePasswordReset(ctx, "live", now, "new-hash", "new-salt")
	require.NoError(t, err)
	assert.Equal(t, identity.Auth.ID, authID)

	found, err := store.FindByID(ctx, identity.Auth.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", pointer.Val(found.Auth.PasswordHash))
	assert.Equal(t, "new-salt", pointer.Val(found.Auth.PasswordSalt))
	require.NotNil(t, found.Auth.PasswordChangedAt)

	tests := []struct {
		name      string
		tokenHash string
	}{
		{"reused", "live"},
		{"expired", "expired"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.ConsumePasswordReset(ctx, tt.tokenHash, now, "x", "y")
			assert.ErrorIs(t, err, auth.ErrResetTokenInvalid)
		})
	}
}

/*
TestSQLiteStore_TwoFactor replaces enrolments instead of mutating them.
*/
func TestSQLiteStore_TwoFactor(t *testing.T) {
	store, database := newSQLiteStore(t)
	ctx := context.Background()

	identity, err := store.CreateIdentity(ctx, credential("a@x.com", "alice01"))
	require.NoError(t, err)

	none, err := store.FindTwoFactor(ctx, identity.Auth.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	first := &auth.TwoFactorAuth{AuthID: identity.Auth.ID, Secret: "FIRST", BackupCodes: []string{"a", "b"}}
	require.NoError(t, store.ReplaceTwoFactor(ctx, first))
	confirmedAt := time.Now().UTC().Truncate(time.Second)
	second := &auth.TwoFactorAuth{AuthID: identity.Auth.ID, Secret: "SECOND", BackupCodes: []string{"c"}, LastUsed: &confirmedAt}
	require.NoError(t, store.ReplaceTwoFactor(ctx, second))

	active, err := store.FindTwoFactor(ctx, identity.Auth.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, "SECOND", active.Secret)
	assert.Equal(t, []string{"c"}, active.BackupCodes)
	require.NotNil(t, active.LastUsed)
	assert.WithinDuration(t, confirmedAt, *active.LastUsed, time.Second)

	var retired int
	require.NoError(t, database.QueryRow(
		`SELECT COUNT(*) FROM two_factor_auth WHERE auth_id = ? AND deleted_at IS NOT NULL`, identity.Auth.ID).Scan(&retired))
	assert.Equal(t, 1, retired)

	found, err := store.FindByID(ctx, identity.Auth.ID)
	require.NoError(t, err)
	assert.True(t, found.Auth.TwoFactorEnabled)
	assert.Equal(t, "SECOND", pointer.Val(found.Auth.TwoFactorSecret))

	require.NoError(t, store.RecordTwoFactorUse(ctx, active.ID, []string{}, time.Now()))
	used, err := store.FindTwoFactor(ctx, identity.Auth.ID)
	require.NoError(t, err)
	assert.Empty(t, used.BackupCodes)
	assert.NotNil(t, used.LastUsed)

	require.NoError(t, store.RemoveTwoFactor(ctx, identity.Auth.ID, time.Now()))
	removed, err := store.FindTwoFactor(ctx, identity.Auth.ID)
	require.NoError(t, err)
	assert.Nil(t, removed)

	found, err = store.FindByID(ctx, identity.Auth.ID)
	require.NoError(t, err)
	assert.False(t, found.Auth.TwoFactorEnabled)
	assert.Nil(t, found.Auth.TwoFactorSecret)
}

/*
TestSQLiteStore_Deactivate hides soft-deleted identities from lookups.
*/
func TestSQLiteStore_Deactivate(t *testing.T) {
	store, database := newSQLiteStore(t)
	ctx := context.Background()

	identity, err := store.CreateIdentity(ctx, credential("a@x.com", "alice01"))
	require.NoError(t, err)

	require.NoError(t, store.Deactivate(ctx, identity.Auth.ID, time.Now()))

	found, err := store.FindIdentity(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, found)

	byID, err := store.FindByID(ctx, identity.Auth.ID)
	require.NoError(t, err)
	assert.Nil(t, byID)

	assert.ErrorIs(t, store.Deactivate(ctx, identity.Auth.ID, time.Now()), auth.ErrNotFound)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM auth WHERE id = ?`, identity.Auth.ID).Scan(&count))
	assert.Equal(t, 1, count, "the row is kept")
}

/*
TestSQLiteStore_CascadeDelete removes dependents with their Auth row.
*/
func TestSQLiteStore_CascadeDelete(t *testing.T) {
	store, database := newSQLiteStore(t)
	ctx := context.Background()

	identity, err := store.CreateIdentity(ctx, credential("a@x.com", "alice01"))
	require.NoError(t, err)
	require.NoError(t, store.CreatePasswordReset(ctx, &auth.PasswordReset{
		AuthID: identity.Auth.ID, TokenHash: "t", ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, store.ReplaceTwoFactor(ctx, &auth.TwoFactorAuth{AuthID: identity.Auth.ID, Secret: "S"}))

	_, err = database.Exec(`DELETE FROM auth WHERE id = ?`, identity.Auth.ID)
	require.NoError(t, err)

	for _, table := range []string{"users", "password_resets", "two_factor_auth", "auth_providers"} {
		var count int
		require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&count))
		assert.Zero(t, count, table)
	}
}
