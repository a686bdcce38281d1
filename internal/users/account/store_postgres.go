// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
	"github.com/ultimatemercer/identity/internal/platform/database/schema"
	"github.com/ultimatemercer/identity/internal/platform/dberr"
	"github.com/ultimatemercer/identity/internal/users/auth"
	"github.com/ultimatemercer/identity/pkg/uuid"
)

// # Shared Query Fragments

var (
	profileColumns = "u." + strings.Join(schema.UserProfile.Columns(), ", u.")

	// Profiles of deactivated identities are not visible.
	profileFrom = fmt.Sprintf("%s u JOIN %s a ON a.%s = u.%s",
		schema.UserProfile.Table, schema.Auth.Table, schema.Auth.ID, schema.UserProfile.AuthID)

	profileUpdateSet = []string{
		schema.UserProfile.FirstName, schema.UserProfile.LastName, schema.UserProfile.Bio,
		schema.UserProfile.AvatarURL, schema.UserProfile.CoverURL, schema.UserProfile.SocialLinks,
		schema.UserProfile.Location, schema.UserProfile.Timezone, schema.UserProfile.Language,
		schema.UserProfile.Theme, schema.UserProfile.ProfileVisibility, schema.UserProfile.UpdatedAt,
	}
)

type rowScanner interface {
	Scan(dest ...any) error
}

func profileTargets(profile *auth.UserProfile, socialLinks any) []any {
	return []any{
		&profile.ID, &profile.AuthID, &profile.Username, &profile.FirstName,
		&profile.LastName, &profile.Bio, &profile.AvatarURL, &profile.CoverURL,
		socialLinks, &profile.InvitationCode, &profile.Location, &profile.Timezone,
		&profile.Language, &profile.Theme, &profile.ProfileVisibility,
		&profile.CreatedAt, &profile.UpdatedAt,
	}
}

func updateValues(profile *auth.UserProfile, socialLinks any) []any {
	return []any{
		profile.FirstName, profile.LastName, profile.Bio,
		profile.AvatarURL, profile.CoverURL, socialLinks,
		profile.Location, profile.Timezone, profile.Language,
		profile.Theme, profile.ProfileVisibility, profile.UpdatedAt,
	}
}

func wrap(op string, err error) error {
	if dberr.IsUnavailable(err) {
		return apperr.ServiceUnavailable("Profile store is temporarily unavailable").WithCause(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// # Repository Implementations

// PostgresRepository implements [ProfileRepository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ ProfileRepository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new Postgres implementation for profiles.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// FindProfile retrieves the profile row joined to its live Auth row.
func (repository *PostgresRepository) FindProfile(context context.Context, authID string) (*auth.UserProfile, error) {
	if !uuid.Valid(authID) {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE u.%s = $1 AND a.%s IS NULL`,
		profileColumns, profileFrom, schema.UserProfile.AuthID, schema.Auth.DeletedAt)

	profile, err := scanProfile(repository.pool.QueryRow(context, query, authID))
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, nil
		}
		return nil, wrap("postgres_profile_find_failed", err)
	}
	return profile, nil
}

func scanProfile(row rowScanner) (*auth.UserProfile, error) {
	profile := &auth.UserProfile{}
	if err := row.Scan(profileTargets(profile, &profile.SocialLinks)...); err != nil {
		return nil, err
	}
	if profile.SocialLinks.Custom == nil {
		profile.SocialLinks.Custom = []auth.CustomLink{}
	}
	return profile, nil
}

// UpdateProfile rewrites the mutable columns of the profile row.
func (repository *PostgresRepository) UpdateProfile(context context.Context, profile *auth.UserProfile) error {
	assignments := make([]string, len(profileUpdateSet))
	for i, column := range profileUpdateSet {
		assignments[i] = fmt.Sprintf("%s = $%d", column, i+2)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1`,
		schema.UserProfile.Table, strings.Join(assignments, ", "), schema.UserProfile.AuthID)

	profile.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	tag, err := repository.pool.Exec(context, query, append([]any{profile.AuthID}, updateValues(profile, profile.SocialLinks)...)...)
	if err != nil {
		return wrap("postgres_profile_update_failed", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Profile")
	}
	return nil
}
