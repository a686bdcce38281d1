// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the credential lifecycle of an identity.

It owns how an authentication identity (email, username, password, OAuth
linkage, two-factor state) is created, looked up and verified.

# Architecture

  - Entities: Auth (credential root), UserProfile (public 1:1 profile),
    PasswordReset and TwoFactorAuth (dependents of Auth).
  - Repository: storage contracts with PostgreSQL and SQLite engines, plus a
    Redis store for short-lived tokens.
  - Service: registration, login and recovery rules, independent of storage.

Secrets (password hash, salt, two-factor secret) never leave this package in
a serialised form; transport code works with [PublicAuth] and [IdentityView].
*/
package auth

import (
	"time"
)

// # Providers

// Provider names an external OAuth identity provider.
type Provider string

const (
	ProviderGithub  Provider = "github"
	ProviderGoogle  Provider = "google"
	ProviderDiscord Provider = "discord"
)

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGithub, ProviderGoogle, ProviderDiscord:
		return true
	}
	return false
}

// ProviderLink binds an Auth to one account at an OAuth provider.
type ProviderLink struct {
	Provider   Provider `json:"provider"`
	ProviderID string   `json:"provider_id"`
}

// # Domain Entities

// Auth is the credential identity. It is the root every other record hangs off.
type Auth struct {
	ID       string
	Email    string
	Username string

	// PasswordHash and PasswordSalt are both set or both nil (OAuth-only).
	PasswordHash *string
	PasswordSalt *string

	Providers []ProviderLink

	EmailVerified    bool
	IsActive         bool
	TwoFactorEnabled bool
	TwoFactorSecret  *string

	LastLogin         *time.Time
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// HasPassword reports whether the identity can sign in with a password.
func (auth *Auth) HasPassword() bool {
	return auth.PasswordHash != nil && auth.PasswordSalt != nil
}

// CustomLink is a user-defined entry in [SocialLinks].
type CustomLink struct {
	Name string  `json:"name"`
	URL  string  `json:"url"`
	Icon *string `json:"icon,omitempty"`
}

// SocialLinks is stored as a single JSON document on the profile row.
type SocialLinks struct {
	Website   *string      `json:"website"`
	Github    *string      `json:"github"`
	Linkedin  *string      `json:"linkedin"`
	Twitter   *string      `json:"twitter"`
	Instagram *string      `json:"instagram"`
	Youtube   *string      `json:"youtube"`
	Custom    []CustomLink `json:"custom"`
}

// UserProfile is the public face of an identity.
type UserProfile struct {
	ID                string      `json:"id"`
	AuthID            string      `json:"auth_id"`
	Username          string      `json:"username"`
	FirstName         *string     `json:"first_name"`
	LastName          *string     `json:"last_name"`
	Bio               *string     `json:"bio"`
	AvatarURL         *string     `json:"avatar_url"`
	CoverURL          *string     `json:"cover_url"`
	SocialLinks       SocialLinks `json:"social_links"`
	InvitationCode    *string     `json:"invitation_code"`
	Location          *string     `json:"location"`
	Timezone          string      `json:"timezone"`
	Language          string      `json:"language"`
	Theme             string      `json:"theme"`
	ProfileVisibility string      `json:"profile_visibility"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Profile defaults applied at creation.
const (
	DefaultTimezone   = "UTC"
	DefaultLanguage   = "en"
	DefaultTheme      = "light"
	DefaultVisibility = "public"
)

// Allowed values for the profile enumerations.
var (
	Themes       = []string{"light", "dark", "auto"}
	Visibilities = []string{"public", "private", "friends"}
)

// Identity is an Auth joined with its profile, as returned by lookups.
type Identity struct {
	Auth    Auth
	Profile UserProfile
}

// NewCredential carries everything CreateIdentity persists.
type NewCredential struct {
	Email        string
	Username     string
	PasswordHash *string
	PasswordSalt *string
	Providers    []ProviderLink
}

// PasswordReset is one issued reset token. Only the token hash is stored.
type PasswordReset struct {
	ID        string
	AuthID    string
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Usable reports whether the token may still be redeemed at now.
func (reset *PasswordReset) Usable(now time.Time) bool {
	return !reset.Used && now.Before(reset.ExpiresAt)
}

// TwoFactorAuth is the active two-factor enrolment of an identity.
// BackupCodes holds hashes of the single-use codes that remain.
type TwoFactorAuth struct {
	ID          string
	AuthID      string
	Secret      string
	BackupCodes []string
	EnabledAt   time.Time
	LastUsed    *time.Time
}

// # Output Views

// PublicAuth is the externally visible projection of [Auth].
type PublicAuth struct {
	ID                string         `json:"id"`
	Email             string         `json:"email"`
	Username          string         `json:"username"`
	Providers         []ProviderLink `json:"providers"`
	EmailVerified     bool           `json:"email_verified"`
	IsActive          bool           `json:"is_active"`
	TwoFactorEnabled  bool           `json:"two_factor_enabled"`
	LastLogin         *time.Time     `json:"last_login"`
	PasswordChangedAt *time.Time     `json:"password_changed_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// IdentityView is the externally visible projection of [Identity].
type IdentityView struct {
	Auth    PublicAuth  `json:"auth"`
	Profile UserProfile `json:"profile"`
}

// Public projects auth onto [PublicAuth].
func (auth *Auth) Public() PublicAuth {
	providers := auth.Providers
	if providers == nil {
		providers = []ProviderLink{}
	}

	return PublicAuth{
		ID:                auth.ID,
		Email:             auth.Email,
		Username:          auth.Username,
		Providers:         providers,
		EmailVerified:     auth.EmailVerified,
		IsActive:          auth.IsActive,
		TwoFactorEnabled:  auth.TwoFactorEnabled,
		LastLogin:         auth.LastLogin,
		PasswordChangedAt: auth.PasswordChangedAt,
		CreatedAt:         auth.CreatedAt,
		UpdatedAt:         auth.UpdatedAt,
	}
}

// View projects identity onto [IdentityView].
func (identity *Identity) View() *IdentityView {
	return &IdentityView{
		Auth:    identity.Auth.Public(),
		Profile: identity.Profile,
	}
}

// # Field Identifiers

// Field names used in validation details and error reports.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldIdentifier      = "identifier"
	FieldToken           = "token"
	FieldCode            = "code"
	FieldSecret          = "secret"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldProvider        = "provider"
	FieldProviderID      = "provider_id"
)
