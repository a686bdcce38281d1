// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/ultimatemercer/identity/internal/platform/database/schema"
	"github.com/ultimatemercer/identity/internal/platform/dberr"
)

// # Shared Query Fragments

// Both engines select the same projection; only placeholders differ.
var (
	identityColumns = strings.Join(append(
		qualify("a", schema.Auth.ID, schema.Auth.Email, schema.Auth.Username,
			schema.Auth.PasswordHash, schema.Auth.PasswordSalt, schema.Auth.EmailVerified,
			schema.Auth.IsActive, schema.Auth.TwoFactorEnabled, schema.Auth.TwoFactorSecret,
			schema.Auth.LastLogin, schema.Auth.PasswordChangedAt, schema.Auth.CreatedAt,
			schema.Auth.UpdatedAt, schema.Auth.DeletedAt),
		qualify("u", schema.UserProfile.Columns()...)...,
	), ", ")

	identityFrom = fmt.Sprintf("%s a JOIN %s u ON u.%s = a.%s",
		schema.Auth.Table, schema.UserProfile.Table, schema.UserProfile.AuthID, schema.Auth.ID)
)

func qualify(alias string, columns ...string) []string {
	qualified := make([]string, len(columns))
	for i, column := range columns {
		qualified[i] = alias + "." + column
	}
	return qualified
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// identityTargets lists scan destinations in identityColumns order. The
// social links column goes to socialLinks because engines decode JSON
// differently.
func identityTargets(identity *Identity, socialLinks any) []any {
	auth := &identity.Auth
	profile := &identity.Profile
	return []any{
		&auth.ID, &auth.Email, &auth.Username,
		&auth.PasswordHash, &auth.PasswordSalt, &auth.EmailVerified,
		&auth.IsActive, &auth.TwoFactorEnabled, &auth.TwoFactorSecret,
		&auth.LastLogin, &auth.PasswordChangedAt, &auth.CreatedAt,
		&auth.UpdatedAt, &auth.DeletedAt,
		&profile.ID, &profile.AuthID, &profile.Username, &profile.FirstName,
		&profile.LastName, &profile.Bio, &profile.AvatarURL, &profile.CoverURL,
		socialLinks, &profile.InvitationCode, &profile.Location, &profile.Timezone,
		&profile.Language, &profile.Theme, &profile.ProfileVisibility,
		&profile.CreatedAt, &profile.UpdatedAt,
	}
}

// newIdentity builds the in-memory identity CreateIdentity returns, with the
// same defaults the tables apply.
func newIdentity(authID, profileID string, credential NewCredential, now time.Time) *Identity {
	providers := credential.Providers
	if providers == nil {
		providers = []ProviderLink{}
	}

	return &Identity{
		Auth: Auth{
			ID:           authID,
			Email:        credential.Email,
			Username:     credential.Username,
			PasswordHash: credential.PasswordHash,
			PasswordSalt: credential.PasswordSalt,
			Providers:    providers,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		Profile: UserProfile{
			ID:                profileID,
			AuthID:            authID,
			Username:          credential.Username,
			SocialLinks:       SocialLinks{Custom: []CustomLink{}},
			Timezone:          DefaultTimezone,
			Language:          DefaultLanguage,
			Theme:             DefaultTheme,
			ProfileVisibility: DefaultVisibility,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}
}

// storeNow is the timestamp written by the stores. Postgres keeps
// microseconds, so both engines round there to return identical values.
func storeNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// # Error Classification

// classify turns an engine error into the repository taxonomy. Anything it
// cannot classify is wrapped with operation.
func classify(operation string, err error) error {
	if target, ok := dberr.UniqueViolation(err); ok {
		return newError(KindDuplicateIdentity, collisionField(target), err)
	}
	if dberr.IsUnavailable(err) {
		return newError(KindStoreUnavailable, "", err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}

// collisionField maps a constraint name ("auth_email_idx") or SQLite column
// list ("auth.email") onto the field it protects.
func collisionField(target string) string {
	switch {
	case strings.Contains(target, "provider"):
		return FieldProvider
	case strings.Contains(target, "email"):
		return FieldEmail
	case strings.Contains(target, "username"):
		return FieldUsername
	}
	return ""
}
