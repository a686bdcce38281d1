// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ultimatemercer/identity/internal/platform/database/schema"
	"github.com/ultimatemercer/identity/internal/platform/dberr"
	"github.com/ultimatemercer/identity/pkg/uuid"
)

// # SQLite Credential Store

// SQLiteStore implements [CredentialStore] on the embedded engine.
//
// The handle must come from sqlite.Open: a single connection with immediate
// transactions. Inside a transaction every statement goes through the
// transaction, never the handle, or the call would wait on itself.
type SQLiteStore struct {
	database *sql.DB

	// afterAuthInsert runs between the auth and profile inserts. Tests use it
	// to inject a fault mid-transaction.
	afterAuthInsert func(context context.Context) error
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{database: database}
}

var _ CredentialStore = (*SQLiteStore)(nil)

/*
FindIdentity looks an identity up by exact email or username.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *Identity: nil when nothing matches
  - error: StoreUnavailable or execution failures
*/
func (repository *SQLiteStore) FindIdentity(context context.Context, identifier string) (*Identity, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE (a.email = ?1 OR u.username = ?1) AND a.deleted_at IS NULL
		ORDER BY CASE WHEN a.email = ?1 THEN 0 ELSE 1 END
		LIMIT 1`, identityColumns, identityFrom)

	return repository.findOne(context, "sqlite_find_identity_failed", query, identifier)
}

// FindByID resolves a live identity by its Auth ID.
func (repository *SQLiteStore) FindByID(context context.Context, authID string) (*Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE a.id = ? AND a.deleted_at IS NULL`,
		identityColumns, identityFrom)

	return repository.findOne(context, "sqlite_find_by_id_failed", query, authID)
}

// FindByProvider resolves the identity linked to an OAuth account.
func (repository *SQLiteStore) FindByProvider(context context.Context, link ProviderLink) (*Identity, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		JOIN %s p ON p.%s = a.id
		WHERE p.%s = ? AND p.%s = ? AND a.deleted_at IS NULL`,
		identityColumns, identityFrom, schema.AuthProvider.Table, schema.AuthProvider.AuthID,
		schema.AuthProvider.Provider, schema.AuthProvider.ProviderID)

	return repository.findOne(context, "sqlite_find_by_provider_failed", query, string(link.Provider), link.ProviderID)
}

func (repository *SQLiteStore) findOne(context context.Context, operation, query string, args ...any) (*Identity, error) {
	identity, err := scanSQLiteIdentity(repository.database.QueryRowContext(context, query, args...))
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, nil
		}
		return nil, classify(operation, err)
	}

	providers, err := repository.providers(context, identity.Auth.ID)
	if err != nil {
		return nil, classify(operation, err)
	}
	identity.Auth.Providers = providers

	return identity, nil
}

func (repository *SQLiteStore) providers(context context.Context, authID string) ([]ProviderLink, error) {
	rows, err := repository.database.QueryContext(context, `
		SELECT provider, provider_id FROM auth_providers
		WHERE auth_id = ? ORDER BY linked_at, provider`, authID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []ProviderLink{}
	for rows.Next() {
		var link ProviderLink
		if err := rows.Scan(&link.Provider, &link.ProviderID); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func scanSQLiteIdentity(row rowScanner) (*Identity, error) {
	identity := &Identity{}
	var socialLinks string

	if err := row.Scan(identityTargets(identity, &socialLinks)...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(socialLinks), &identity.Profile.SocialLinks); err != nil {
		return nil, fmt.Errorf("decode social links: %w", err)
	}
	if identity.Profile.SocialLinks.Custom == nil {
		identity.Profile.SocialLinks.Custom = []CustomLink{}
	}
	return identity, nil
}

/*
CreateIdentity inserts auth, provider links and profile in one transaction.

Description: A failure at any step rolls the whole unit back, so no reader
can ever see an Auth row without its profile.

Parameters:
  - context: context.Context
  - credential: NewCredential

Returns:
  - *Identity: Created identity
  - error: DuplicateIdentity, StoreUnavailable or execution failures
*/
func (repository *SQLiteStore) CreateIdentity(context context.Context, credential NewCredential) (*Identity, error) {
	now := storeNow()
	identity := newIdentity(uuid.New(), uuid.New(), credential, now)

	socialLinks, err := json.Marshal(identity.Profile.SocialLinks)
	if err != nil {
		return nil, fmt.Errorf("sqlite_create_identity_failed: %w", err)
	}

	transaction, err := repository.database.BeginTx(context, nil)
	if err != nil {
		return nil, classify("sqlite_create_identity_failed", err)
	}
	defer transaction.Rollback()

	_, err = transaction.ExecContext(context, `
		INSERT INTO auth (id, email, username, password_hash, password_salt, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		identity.Auth.ID, credential.Email, credential.Username,
		credential.PasswordHash, credential.PasswordSalt, now, now)
	if err != nil {
		return nil, classify("sqlite_create_identity_failed", err)
	}

	if repository.afterAuthInsert != nil {
		if err := repository.afterAuthInsert(context); err != nil {
			return nil, classify("sqlite_create_identity_failed", err)
		}
	}

	for _, link := range credential.Providers {
		_, err = transaction.ExecContext(context, `
			INSERT INTO auth_providers (auth_id, provider, provider_id, linked_at)
			VALUES (?, ?, ?, ?)`,
			identity.Auth.ID, string(link.Provider), link.ProviderID, now)
		if err != nil {
			return nil, classify("sqlite_create_identity_failed", err)
		}
	}

	profile := identity.Profile
	_, err = transaction.ExecContext(context, `
		INSERT INTO users (id, auth_id, username, social_links, timezone, language, theme, profile_visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.AuthID, profile.Username, string(socialLinks),
		profile.Timezone, profile.Language, profile.Theme, profile.ProfileVisibility, now, now)
	if err != nil {
		return nil, classify("sqlite_create_identity_failed", err)
	}

	if err := transaction.Commit(); err != nil {
		return nil, classify("sqlite_create_identity_failed", err)
	}

	return identity, nil
}

// UpdatePassword replaces the credential pair of a live identity.
func (repository *SQLiteStore) UpdatePassword(context context.Context, authID, hash, salt string, changedAt time.Time) error {
	result, err := repository.database.ExecContext(context, `
		UPDATE auth SET password_hash = ?, password_salt = ?, password_changed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		hash, salt, changedAt.UTC(), changedAt.UTC(), authID)
	return affectedOne("sqlite_update_password_failed", result, err)
}

// RecordLogin stamps last_login.
func (repository *SQLiteStore) RecordLogin(context context.Context, authID string, at time.Time) error {
	_, err := repository.database.ExecContext(context,
		`UPDATE auth SET last_login = ? WHERE id = ?`, at.UTC(), authID)
	if err != nil {
		return classify("sqlite_record_login_failed", err)
	}
	return nil
}

// MarkEmailVerified sets email_verified on a live identity.
func (repository *SQLiteStore) MarkEmailVerified(context context.Context, authID string) error {
	result, err := repository.database.ExecContext(context, `
		UPDATE auth SET email_verified = 1, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`, storeNow(), authID)
	return affectedOne("sqlite_mark_email_verified_failed", result, err)
}

// LinkProvider attaches an OAuth account to an identity.
func (repository *SQLiteStore) LinkProvider(context context.Context, authID string, link ProviderLink) error {
	_, err := repository.database.ExecContext(context, `
		INSERT INTO auth_providers (auth_id, provider, provider_id, linked_at) VALUES (?, ?, ?, ?)`,
		authID, string(link.Provider), link.ProviderID, storeNow())
	if err != nil {
		return classify("sqlite_link_provider_failed", err)
	}
	return nil
}

// Deactivate soft-deletes the identity.
func (repository *SQLiteStore) Deactivate(context context.Context, authID string, at time.Time) error {
	result, err := repository.database.ExecContext(context, `
		UPDATE auth SET is_active = 0, deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`, at.UTC(), at.UTC(), authID)
	return affectedOne("sqlite_deactivate_failed", result, err)
}

// # Password Resets

// CreatePasswordReset stores an unused reset row.
func (repository *SQLiteStore) CreatePasswordReset(context context.Context, reset *PasswordReset) error {
	reset.ID = uuid.New()
	reset.CreatedAt = storeNow()

	_, err := repository.database.ExecContext(context, `
		INSERT INTO password_resets (id, auth_id, token_hash, expires_at, used, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`,
		reset.ID, reset.AuthID, reset.TokenHash, reset.ExpiresAt.UTC(), reset.CreatedAt, reset.CreatedAt)
	if err != nil {
		return classify("sqlite_create_password_reset_failed", err)
	}
	return nil
}

/*
ConsumePasswordReset redeems the token and swaps the password atomically.

Parameters:
  - context: context.Context
  - tokenHash: string
  - now: time.Time
  - hash, salt: string

Returns:
  - string: Owning Auth ID
  - error: ResetTokenInvalid or store failures
*/
func (repository *SQLiteStore) ConsumePasswordReset(context context.Context, tokenHash string, now time.Time, hash, salt string) (string, error) {
	transaction, err := repository.database.BeginTx(context, nil)
	if err != nil {
		return "", classify("sqlite_consume_password_reset_failed", err)
	}
	defer transaction.Rollback()

	reset := &PasswordReset{TokenHash: tokenHash}
	err = transaction.QueryRowContext(context, `
		SELECT id, auth_id, expires_at, used FROM password_resets WHERE token_hash = ?`, tokenHash).
		Scan(&reset.ID, &reset.AuthID, &reset.ExpiresAt, &reset.Used)
	if dberr.IsNoRows(err) {
		return "", ErrResetTokenInvalid
	}
	if err != nil {
		return "", classify("sqlite_consume_password_reset_failed", err)
	}
	if !reset.Usable(now) {
		return "", ErrResetTokenInvalid
	}

	result, err := transaction.ExecContext(context, `
		UPDATE password_resets SET used = 1, updated_at = ? WHERE id = ? AND used = 0`,
		now.UTC(), reset.ID)
	if err := affectedOne("sqlite_consume_password_reset_failed", result, err); err != nil {
		return "", resetInvalidIfMissing(err)
	}

	result, err = transaction.ExecContext(context, `
		UPDATE auth SET password_hash = ?, password_salt = ?, password_changed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		hash, salt, now.UTC(), now.UTC(), reset.AuthID)
	if err := affectedOne("sqlite_consume_password_reset_failed", result, err); err != nil {
		return "", resetInvalidIfMissing(err)
	}

	if err := transaction.Commit(); err != nil {
		return "", classify("sqlite_consume_password_reset_failed", err)
	}
	return reset.AuthID, nil
}

// # Two-Factor

// FindTwoFactor returns the active enrolment, or nil.
func (repository *SQLiteStore) FindTwoFactor(context context.Context, authID string) (*TwoFactorAuth, error) {
	record := &TwoFactorAuth{}
	var backupCodes string

	err := repository.database.QueryRowContext(context, `
		SELECT id, auth_id, secret, backup_codes, enabled_at, last_used
		FROM two_factor_auth WHERE auth_id = ? AND deleted_at IS NULL`, authID).
		Scan(&record.ID, &record.AuthID, &record.Secret, &backupCodes, &record.EnabledAt, &record.LastUsed)
	if dberr.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("sqlite_find_two_factor_failed", err)
	}

	if err := json.Unmarshal([]byte(backupCodes), &record.BackupCodes); err != nil {
		return nil, fmt.Errorf("sqlite_find_two_factor_failed: %w", err)
	}
	return record, nil
}

// ReplaceTwoFactor retires the active enrolment and installs record.
func (repository *SQLiteStore) ReplaceTwoFactor(context context.Context, record *TwoFactorAuth) error {
	backupCodes, err := encodeBackupCodes(record.BackupCodes)
	if err != nil {
		return fmt.Errorf("sqlite_replace_two_factor_failed: %w", err)
	}

	now := storeNow()
	record.ID = uuid.New()
	if record.EnabledAt.IsZero() {
		record.EnabledAt = now
	}

	var lastUsed any
	if record.LastUsed != nil {
		lastUsed = record.LastUsed.UTC()
	}

	transaction, err := repository.database.BeginTx(context, nil)
	if err != nil {
		return classify("sqlite_replace_two_factor_failed", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(context, `
		UPDATE two_factor_auth SET deleted_at = ?, updated_at = ?
		WHERE auth_id = ? AND deleted_at IS NULL`, now, now, record.AuthID); err != nil {
		return classify("sqlite_replace_two_factor_failed", err)
	}

	if _, err := transaction.ExecContext(context, `
		INSERT INTO two_factor_auth (id, auth_id, secret, backup_codes, enabled_at, last_used, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.AuthID, record.Secret, backupCodes, record.EnabledAt.UTC(), lastUsed, now, now); err != nil {
		return classify("sqlite_replace_two_factor_failed", err)
	}

	result, err := transaction.ExecContext(context, `
		UPDATE auth SET two_factor_enabled = 1, two_factor_secret = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`, record.Secret, now, record.AuthID)
	if err := affectedOne("sqlite_replace_two_factor_failed", result, err); err != nil {
		return err
	}

	if err := transaction.Commit(); err != nil {
		return classify("sqlite_replace_two_factor_failed", err)
	}
	return nil
}

// RecordTwoFactorUse stamps last_used and stores the remaining backup codes.
func (repository *SQLiteStore) RecordTwoFactorUse(context context.Context, recordID string, backupCodes []string, at time.Time) error {
	encoded, err := encodeBackupCodes(backupCodes)
	if err != nil {
		return fmt.Errorf("sqlite_record_two_factor_use_failed: %w", err)
	}

	_, err = repository.database.ExecContext(context, `
		UPDATE two_factor_auth SET backup_codes = ?, last_used = ?, updated_at = ? WHERE id = ?`,
		encoded, at.UTC(), at.UTC(), recordID)
	if err != nil {
		return classify("sqlite_record_two_factor_use_failed", err)
	}
	return nil
}

// RemoveTwoFactor retires the enrolment and disables two-factor.
func (repository *SQLiteStore) RemoveTwoFactor(context context.Context, authID string, at time.Time) error {
	transaction, err := repository.database.BeginTx(context, nil)
	if err != nil {
		return classify("sqlite_remove_two_factor_failed", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(context, `
		UPDATE two_factor_auth SET deleted_at = ?, updated_at = ?
		WHERE auth_id = ? AND deleted_at IS NULL`, at.UTC(), at.UTC(), authID); err != nil {
		return classify("sqlite_remove_two_factor_failed", err)
	}

	if _, err := transaction.ExecContext(context, `
		UPDATE auth SET two_factor_enabled = 0, two_factor_secret = NULL, updated_at = ?
		WHERE id = ?`, at.UTC(), authID); err != nil {
		return classify("sqlite_remove_two_factor_failed", err)
	}

	if err := transaction.Commit(); err != nil {
		return classify("sqlite_remove_two_factor_failed", err)
	}
	return nil
}

// # Helpers

// affectedOne converts "no row matched" into ErrNotFound.
func affectedOne(operation string, result sql.Result, err error) error {
	if err != nil {
		return classify(operation, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return classify(operation, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func resetInvalidIfMissing(err error) error {
	if KindOf(err) == KindNotFound {
		return ErrResetTokenInvalid
	}
	return err
}

func encodeBackupCodes(codes []string) (string, error) {
	if codes == nil {
		codes = []string{}
	}
	encoded, err := json.Marshal(codes)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
