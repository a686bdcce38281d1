// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
	"github.com/ultimatemercer/identity/internal/platform/database/schema"
	"github.com/ultimatemercer/identity/internal/platform/dberr"
	"github.com/ultimatemercer/identity/internal/users/auth"
)

// SQLiteRepository implements [ProfileRepository] on database/sql. Social
// links are stored as JSON text.
type SQLiteRepository struct {
	database *sql.DB
}

var _ ProfileRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a new SQLite implementation for profiles.
func NewSQLiteRepository(database *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{database: database}
}

// FindProfile retrieves the profile row joined to its live Auth row.
func (repository *SQLiteRepository) FindProfile(context context.Context, authID string) (*auth.UserProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE u.%s = ? AND a.%s IS NULL`,
		profileColumns, profileFrom, schema.UserProfile.AuthID, schema.Auth.DeletedAt)

	var socialLinks string
	profile := &auth.UserProfile{}

	err := repository.database.QueryRowContext(context, query, authID).Scan(profileTargets(profile, &socialLinks)...)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, nil
		}
		return nil, wrap("sqlite_profile_find_failed", err)
	}

	if err := json.Unmarshal([]byte(socialLinks), &profile.SocialLinks); err != nil {
		return nil, fmt.Errorf("sqlite_profile_decode_failed: %w", err)
	}
	if profile.SocialLinks.Custom == nil {
		profile.SocialLinks.Custom = []auth.CustomLink{}
	}
	return profile, nil
}

// UpdateProfile rewrites the mutable columns of the profile row.
func (repository *SQLiteRepository) UpdateProfile(context context.Context, profile *auth.UserProfile) error {
	assignments := make([]string, len(profileUpdateSet))
	for i, column := range profileUpdateSet {
		assignments[i] = column + " = ?"
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = ?`,
		schema.UserProfile.Table, strings.Join(assignments, ", "), schema.UserProfile.AuthID)

	socialLinks, err := json.Marshal(profile.SocialLinks)
	if err != nil {
		return fmt.Errorf("sqlite_profile_encode_failed: %w", err)
	}

	profile.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	result, err := repository.database.ExecContext(context, query,
		append(updateValues(profile, string(socialLinks)), profile.AuthID)...)
	if err != nil {
		return wrap("sqlite_profile_update_failed", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return wrap("sqlite_profile_update_failed", err)
	}
	if affected == 0 {
		return apperr.NotFound("Profile")
	}
	return nil
}
