// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the credential store so
// queries are assembled from one catalog instead of scattered literals.
package schema

// AuthTable represents the 'auth' table
type AuthTable struct {
	Table             string
	ID                string
	Email             string
	Username          string
	PasswordHash      string
	PasswordSalt      string
	EmailVerified     string
	IsActive          string
	TwoFactorEnabled  string
	TwoFactorSecret   string
	LastLogin         string
	PasswordChangedAt string
	CreatedAt         string
	UpdatedAt         string
	DeletedAt         string
}

// Auth is the schema definition for auth
var Auth = AuthTable{
	Table:             "auth",
	ID:                "id",
	Email:             "email",
	Username:          "username",
	PasswordHash:      "password_hash",
	PasswordSalt:      "password_salt",
	EmailVerified:     "email_verified",
	IsActive:          "is_active",
	TwoFactorEnabled:  "two_factor_enabled",
	TwoFactorSecret:   "two_factor_secret",
	LastLogin:         "last_login",
	PasswordChangedAt: "password_changed_at",
	CreatedAt:         "created_at",
	UpdatedAt:         "updated_at",
	DeletedAt:         "deleted_at",
}

// Columns returns all standard column names
func (t AuthTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Username, t.PasswordHash, t.PasswordSalt,
		t.EmailVerified, t.IsActive, t.TwoFactorEnabled, t.TwoFactorSecret,
		t.LastLogin, t.PasswordChangedAt, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}

// AuthProviderTable represents the 'auth_providers' table
type AuthProviderTable struct {
	Table      string
	AuthID     string
	Provider   string
	ProviderID string
	LinkedAt   string
}

// AuthProvider is the schema definition for auth_providers
var AuthProvider = AuthProviderTable{
	Table:      "auth_providers",
	AuthID:     "auth_id",
	Provider:   "provider",
	ProviderID: "provider_id",
	LinkedAt:   "linked_at",
}

// Columns returns all standard column names
func (t AuthProviderTable) Columns() []string {
	return []string{t.AuthID, t.Provider, t.ProviderID, t.LinkedAt}
}
