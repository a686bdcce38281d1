// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ultimatemercer/identity/internal/platform/database/schema"
	"github.com/ultimatemercer/identity/internal/platform/dberr"
	"github.com/ultimatemercer/identity/pkg/uuid"
)

// # PostgreSQL Credential Store

// PostgresStore implements [CredentialStore] using pgx.
//
// Storage errors are mapped onto the package taxonomy so callers never see
// pgx types.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL implementation of the credential store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ CredentialStore = (*PostgresStore)(nil)

/*
FindIdentity looks an identity up by exact email or username.

Description: An email hit is ordered ahead of a username hit on another row.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *Identity: nil when nothing matches
  - error: StoreUnavailable or execution failures
*/
func (repository *PostgresStore) FindIdentity(context context.Context, identifier string) (*Identity, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE (a.email = $1 OR u.username = $1) AND a.deleted_at IS NULL
		ORDER BY CASE WHEN a.email = $1 THEN 0 ELSE 1 END
		LIMIT 1`, identityColumns, identityFrom)

	return repository.findOne(context, "postgres_find_identity_failed", query, identifier)
}

// FindByID resolves a live identity by its Auth ID.
func (repository *PostgresStore) FindByID(context context.Context, authID string) (*Identity, error) {
	if !uuid.Valid(authID) {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE a.id = $1 AND a.deleted_at IS NULL`,
		identityColumns, identityFrom)

	return repository.findOne(context, "postgres_find_by_id_failed", query, authID)
}

// FindByProvider resolves the identity linked to an OAuth account.
func (repository *PostgresStore) FindByProvider(context context.Context, link ProviderLink) (*Identity, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		JOIN %s p ON p.%s = a.id
		WHERE p.%s = $1 AND p.%s = $2 AND a.deleted_at IS NULL`,
		identityColumns, identityFrom, schema.AuthProvider.Table, schema.AuthProvider.AuthID,
		schema.AuthProvider.Provider, schema.AuthProvider.ProviderID)

	return repository.findOne(context, "postgres_find_by_provider_failed", query, string(link.Provider), link.ProviderID)
}

func (repository *PostgresStore) findOne(context context.Context, operation, query string, args ...any) (*Identity, error) {
	identity := &Identity{}
	row := repository.pool.QueryRow(context, query, args...)

	if err := row.Scan(identityTargets(identity, &identity.Profile.SocialLinks)...); err != nil {
		if dberr.IsNoRows(err) {
			return nil, nil
		}
		return nil, classify(operation, err)
	}
	if identity.Profile.SocialLinks.Custom == nil {
		identity.Profile.SocialLinks.Custom = []CustomLink{}
	}

	rows, err := repository.pool.Query(context, `
		SELECT provider, provider_id FROM auth_providers
		WHERE auth_id = $1 ORDER BY linked_at, provider`, identity.Auth.ID)
	if err != nil {
		return nil, classify(operation, err)
	}

	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ProviderLink, error) {
		var link ProviderLink
		err := row.Scan(&link.Provider, &link.ProviderID)
		return link, err
	})
	if err != nil {
		return nil, classify(operation, err)
	}
	identity.Auth.Providers = links

	return identity, nil
}

/*
CreateIdentity inserts auth, provider links and profile in one transaction.

Parameters:
  - context: context.Context
  - credential: NewCredential

Returns:
  - *Identity: Created identity
  - error: DuplicateIdentity, StoreUnavailable or execution failures
*/
func (repository *PostgresStore) CreateIdentity(context context.Context, credential NewCredential) (*Identity, error) {
	now := storeNow()
	identity := newIdentity(uuid.New(), uuid.New(), credential, now)

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, classify("postgres_create_identity_failed", err)
	}
	defer transaction.Rollback(context)

	_, err = transaction.Exec(context, `
		INSERT INTO auth (id, email, username, password_hash, password_salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		identity.Auth.ID, credential.Email, credential.Username,
		credential.PasswordHash, credential.PasswordSalt, now, now)
	if err != nil {
		return nil, classify("postgres_create_identity_failed", err)
	}

	if len(credential.Providers) > 0 {
		batch := &pgx.Batch{}
		for _, link := range credential.Providers {
			batch.Queue(`
				INSERT INTO auth_providers (auth_id, provider, provider_id, linked_at)
				VALUES ($1, $2, $3, $4)`,
				identity.Auth.ID, string(link.Provider), link.ProviderID, now)
		}
		if err := transaction.SendBatch(context, batch).Close(); err != nil {
			return nil, classify("postgres_create_identity_failed", err)
		}
	}

	profile := identity.Profile
	_, err = transaction.Exec(context, `
		INSERT INTO users (id, auth_id, username, social_links, timezone, language, theme, profile_visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		profile.ID, profile.AuthID, profile.Username, profile.SocialLinks,
		profile.Timezone, profile.Language, profile.Theme, profile.ProfileVisibility, now, now)
	if err != nil {
		return nil, classify("postgres_create_identity_failed", err)
	}

	if err := transaction.Commit(context); err != nil {
		return nil, classify("postgres_create_identity_failed", err)
	}

	return identity, nil
}

// UpdatePassword replaces the credential pair of a live identity.
func (repository *PostgresStore) UpdatePassword(context context.Context, authID, hash, salt string, changedAt time.Time) error {
	tag, err := repository.pool.Exec(context, `
		UPDATE auth SET password_hash = $2, password_salt = $3, password_changed_at = $4, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL`, authID, hash, salt, changedAt)
	return commandAffectedOne("postgres_update_password_failed", tag, err)
}

// RecordLogin stamps last_login.
func (repository *PostgresStore) RecordLogin(context context.Context, authID string, at time.Time) error {
	if _, err := repository.pool.Exec(context, `UPDATE auth SET last_login = $2 WHERE id = $1`, authID, at); err != nil {
		return classify("postgres_record_login_failed", err)
	}
	return nil
}

// MarkEmailVerified sets email_verified on a live identity.
func (repository *PostgresStore) MarkEmailVerified(context context.Context, authID string) error {
	tag, err := repository.pool.Exec(context, `
		UPDATE auth SET email_verified = TRUE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, authID)
	return commandAffectedOne("postgres_mark_email_verified_failed", tag, err)
}

// LinkProvider attaches an OAuth account to an identity.
func (repository *PostgresStore) LinkProvider(context context.Context, authID string, link ProviderLink) error {
	_, err := repository.pool.Exec(context, `
		INSERT INTO auth_providers (auth_id, provider, provider_id) VALUES ($1, $2, $3)`,
		authID, string(link.Provider), link.ProviderID)
	if err != nil {
		return classify("postgres_link_provider_failed", err)
	}
	return nil
}

// Deactivate soft-deletes the identity.
func (repository *PostgresStore) Deactivate(context context.Context, authID string, at time.Time) error {
	tag, err := repository.pool.Exec(context, `
		UPDATE auth SET is_active = FALSE, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL`, authID, at)
	return commandAffectedOne("postgres_deactivate_failed", tag, err)
}

// # Password Resets

// CreatePasswordReset stores an unused reset row.
func (repository *PostgresStore) CreatePasswordReset(context context.Context, reset *PasswordReset) error {
	reset.ID = uuid.New()
	reset.CreatedAt = storeNow()

	_, err := repository.pool.Exec(context, `
		INSERT INTO password_resets (id, auth_id, token_hash, expires_at, used, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $5)`,
		reset.ID, reset.AuthID, reset.TokenHash, reset.ExpiresAt, reset.CreatedAt)
	if err != nil {
		return classify("postgres_create_password_reset_failed", err)
	}
	return nil
}

/*
ConsumePasswordReset redeems the token and swaps the password atomically.

Description: The reset row is locked FOR UPDATE so two concurrent
redemptions serialise and the second one sees used = TRUE.

Parameters:
  - context: context.Context
  - tokenHash: string
  - now: time.Time
  - hash, salt: string

Returns:
  - string: Owning Auth ID
  - error: ResetTokenInvalid or store failures
*/
func (repository *PostgresStore) ConsumePasswordReset(context context.Context, tokenHash string, now time.Time, hash, salt string) (string, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return "", classify("postgres_consume_password_reset_failed", err)
	}
	defer transaction.Rollback(context)

	reset := &PasswordReset{TokenHash: tokenHash}
	err = transaction.QueryRow(context, `
		SELECT id, auth_id, expires_at, used FROM password_resets
		WHERE token_hash = $1 FOR UPDATE`, tokenHash).
		Scan(&reset.ID, &reset.AuthID, &reset.ExpiresAt, &reset.Used)
	if dberr.IsNoRows(err) {
		return "", ErrResetTokenInvalid
	}
	if err != nil {
		return "", classify("postgres_consume_password_reset_failed", err)
	}
	if !reset.Usable(now) {
		return "", ErrResetTokenInvalid
	}

	if _, err := transaction.Exec(context, `
		UPDATE password_resets SET used = TRUE, updated_at = $2 WHERE id = $1`, reset.ID, now); err != nil {
		return "", classify("postgres_consume_password_reset_failed", err)
	}

	tag, err := transaction.Exec(context, `
		UPDATE auth SET password_hash = $2, password_salt = $3, password_changed_at = $4, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL`, reset.AuthID, hash, salt, now)
	if err := commandAffectedOne("postgres_consume_password_reset_failed", tag, err); err != nil {
		return "", resetInvalidIfMissing(err)
	}

	if err := transaction.Commit(context); err != nil {
		return "", classify("postgres_consume_password_reset_failed", err)
	}
	return reset.AuthID, nil
}

// # Two-Factor

// FindTwoFactor returns the active enrolment, or nil.
func (repository *PostgresStore) FindTwoFactor(context context.Context, authID string) (*TwoFactorAuth, error) {
	if !uuid.Valid(authID) {
		return nil, nil
	}

	record := &TwoFactorAuth{}
	err := repository.pool.QueryRow(context, `
		SELECT id, auth_id, secret, backup_codes, enabled_at, last_used
		FROM two_factor_auth WHERE auth_id = $1 AND deleted_at IS NULL`, authID).
		Scan(&record.ID, &record.AuthID, &record.Secret, &record.BackupCodes, &record.EnabledAt, &record.LastUsed)
	if dberr.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("postgres_find_two_factor_failed", err)
	}
	if record.BackupCodes == nil {
		record.BackupCodes = []string{}
	}
	return record, nil
}

// ReplaceTwoFactor retires the active enrolment and installs record.
func (repository *PostgresStore) ReplaceTwoFactor(context context.Context, record *TwoFactorAuth) error {
	now := storeNow()
	record.ID = uuid.New()
	if record.EnabledAt.IsZero() {
		record.EnabledAt = now
	}
	if record.BackupCodes == nil {
		record.BackupCodes = []string{}
	}

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return classify("postgres_replace_two_factor_failed", err)
	}
	defer transaction.Rollback(context)

	if _, err := transaction.Exec(context, `
		UPDATE two_factor_auth SET deleted_at = $2, updated_at = $2
		WHERE auth_id = $1 AND deleted_at IS NULL`, record.AuthID, now); err != nil {
		return classify("postgres_replace_two_factor_failed", err)
	}

	if _, err := transaction.Exec(context, `
		INSERT INTO two_factor_auth (id, auth_id, secret, backup_codes, enabled_at, last_used, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		record.ID, record.AuthID, record.Secret, record.BackupCodes, record.EnabledAt, record.LastUsed, now); err != nil {
		return classify("postgres_replace_two_factor_failed", err)
	}

	tag, err := transaction.Exec(context, `
		UPDATE auth SET two_factor_enabled = TRUE, two_factor_secret = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL`, record.AuthID, record.Secret, now)
	if err := commandAffectedOne("postgres_replace_two_factor_failed", tag, err); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return classify("postgres_replace_two_factor_failed", err)
	}
	return nil
}

// RecordTwoFactorUse stamps last_used and stores the remaining backup codes.
func (repository *PostgresStore) RecordTwoFactorUse(context context.Context, recordID string, backupCodes []string, at time.Time) error {
	if backupCodes == nil {
		backupCodes = []string{}
	}
	_, err := repository.pool.Exec(context, `
		UPDATE two_factor_auth SET backup_codes = $2, last_used = $3, updated_at = $3 WHERE id = $1`,
		recordID, backupCodes, at)
	if err != nil {
		return classify("postgres_record_two_factor_use_failed", err)
	}
	return nil
}

// RemoveTwoFactor retires the enrolment and disables two-factor.
func (repository *PostgresStore) RemoveTwoFactor(context context.Context, authID string, at time.Time) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return classify("postgres_remove_two_factor_failed", err)
	}
	defer transaction.Rollback(context)

	if _, err := transaction.Exec(context, `
		UPDATE two_factor_auth SET deleted_at = $2, updated_at = $2
		WHERE auth_id = $1 AND deleted_at IS NULL`, authID, at); err != nil {
		return classify("postgres_remove_two_factor_failed", err)
	}

	if _, err := transaction.Exec(context, `
		UPDATE auth SET two_factor_enabled = FALSE, two_factor_secret = NULL, updated_at = $2
		WHERE id = $1`, authID, at); err != nil {
		return classify("postgres_remove_two_factor_failed", err)
	}

	if err := transaction.Commit(context); err != nil {
		return classify("postgres_remove_two_factor_failed", err)
	}
	return nil
}

// # Helpers

func commandAffectedOne(operation string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return classify(operation, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
