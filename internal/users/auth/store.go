// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Identity Data Access

// IdentityRepository is the only component allowed to read or write Auth and
// UserProfile rows.
type IdentityRepository interface {

	/*
		FindIdentity looks an identity up by exact email or profile username.

		Description: Both comparisons are attempted; an email match wins over
		a username match on a different row. Soft-deleted identities are
		never returned.

		Parameters:
		  - context: context.Context
		  - identifier: string (email or username)

		Returns:
		  - *Identity: nil when nothing matches
		  - error: Only for store failures, never for "not found"
	*/
	FindIdentity(context context.Context, identifier string) (*Identity, error)

	/*
		CreateIdentity inserts the Auth row, its provider links and its
		profile as one atomic unit.

		Parameters:
		  - context: context.Context
		  - credential: NewCredential

		Returns:
		  - *Identity: Created identity with generated IDs
		  - error: DuplicateIdentity (Field set) or StoreUnavailable
	*/
	CreateIdentity(context context.Context, credential NewCredential) (*Identity, error)

	/*
		FindByID returns the live identity with the given Auth ID.

		Parameters:
		  - context: context.Context
		  - authID: string

		Returns:
		  - *Identity: nil when absent or soft-deleted
		  - error: Store failures
	*/
	FindByID(context context.Context, authID string) (*Identity, error)

	/*
		FindByProvider returns the identity linked to an OAuth account.

		Parameters:
		  - context: context.Context
		  - link: ProviderLink

		Returns:
		  - *Identity: nil when the pair is not linked
		  - error: Store failures
	*/
	FindByProvider(context context.Context, link ProviderLink) (*Identity, error)

	/*
		UpdatePassword replaces the hash and salt and stamps password_changed_at.

		Parameters:
		  - context: context.Context
		  - authID: string
		  - hash, salt: string
		  - changedAt: time.Time

		Returns:
		  - error: NotFound or store failures
	*/
	UpdatePassword(context context.Context, authID, hash, salt string, changedAt time.Time) error

	/*
		RecordLogin stamps last_login.

		Parameters:
		  - context: context.Context
		  - authID: string
		  - at: time.Time

		Returns:
		  - error: Store failures
	*/
	RecordLogin(context context.Context, authID string, at time.Time) error

	/*
		MarkEmailVerified sets email_verified.

		Parameters:
		  - context: context.Context
		  - authID: string

		Returns:
		  - error: NotFound or store failures
	*/
	MarkEmailVerified(context context.Context, authID string) error

	/*
		LinkProvider attaches an OAuth account to an existing identity.

		Parameters:
		  - context: context.Context
		  - authID: string
		  - link: ProviderLink

		Returns:
		  - error: DuplicateIdentity (Field "provider") or store failures
	*/
	LinkProvider(context context.Context, authID string, link ProviderLink) error

	/*
		Deactivate soft-deletes the identity and clears is_active.

		Parameters:
		  - context: context.Context
		  - authID: string
		  - at: time.Time

		Returns:
		  - error: NotFound or store failures
	*/
	Deactivate(context context.Context, authID string, at time.Time) error
}

// # Password Reset Data Access

// PasswordResetRepository persists reset tokens by hash.
type PasswordResetRepository interface {

	/*
		CreatePasswordReset stores a new unused reset row.

		Parameters:
		  - context: context.Context
		  - reset: *PasswordReset (ID and CreatedAt are filled in)

		Returns:
		  - error: Store failures
	*/
	CreatePasswordReset(context context.Context, reset *PasswordReset) error

	/*
		ConsumePasswordReset redeems a token and replaces the password in one
		transaction.

		Description: The row must be unused and unexpired at now. It is
		flipped to used exactly once; a concurrent second redemption fails.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - now: time.Time
		  - hash, salt: string (new credential)

		Returns:
		  - string: Auth ID the token belonged to
		  - error: ResetTokenInvalid or store failures
	*/
	ConsumePasswordReset(context context.Context, tokenHash string, now time.Time, hash, salt string) (string, error)
}

// # Two-Factor Data Access

// TwoFactorRepository manages the active two-factor enrolment of an identity.
type TwoFactorRepository interface {

	/*
		FindTwoFactor returns the active enrolment.

		Parameters:
		  - context: context.Context
		  - authID: string

		Returns:
		  - *TwoFactorAuth: nil when two-factor is not enabled
		  - error: Store failures
	*/
	FindTwoFactor(context context.Context, authID string) (*TwoFactorAuth, error)

	/*
		ReplaceTwoFactor retires any active enrolment, inserts the new one and
		enables two-factor on the Auth row, atomically.

		Parameters:
		  - context: context.Context
		  - record: *TwoFactorAuth

		Returns:
		  - error: Store failures
	*/
	ReplaceTwoFactor(context context.Context, record *TwoFactorAuth) error

	/*
		RecordTwoFactorUse stamps last_used and stores the remaining backup codes.

		Parameters:
		  - context: context.Context
		  - recordID: string
		  - backupCodes: []string
		  - at: time.Time

		Returns:
		  - error: Store failures
	*/
	RecordTwoFactorUse(context context.Context, recordID string, backupCodes []string, at time.Time) error

	/*
		RemoveTwoFactor retires the active enrolment and disables two-factor
		on the Auth row.

		Parameters:
		  - context: context.Context
		  - authID: string
		  - at: time.Time

		Returns:
		  - error: Store failures
	*/
	RemoveTwoFactor(context context.Context, authID string, at time.Time) error
}

// CredentialStore bundles the durable repositories one engine provides.
type CredentialStore interface {
	IdentityRepository
	PasswordResetRepository
	TwoFactorRepository
}

// # Volatile Data Access

// VerificationTokenRepository stores short-lived email verification tokens.
type VerificationTokenRepository interface {

	/*
		SetVerificationToken stores tokenHash for authID with a TTL.

		Returns:
		  - error: Store failures
	*/
	SetVerificationToken(context context.Context, tokenHash, authID string, ttl time.Duration) error

	/*
		TakeVerificationToken returns the owner of tokenHash and deletes it.

		Returns:
		  - string: Auth ID
		  - error: VerificationTokenInvalid when absent or expired
	*/
	TakeVerificationToken(context context.Context, tokenHash string) (string, error)
}

// PendingTwoFactorRepository keeps a generated TOTP secret until the user
// proves possession of it.
type PendingTwoFactorRepository interface {

	/*
		SetPendingSecret stores the secret for authID, replacing any previous one.

		Returns:
		  - error: Store failures
	*/
	SetPendingSecret(context context.Context, authID, secret string, ttl time.Duration) error

	/*
		PendingSecret returns the secret awaiting confirmation.

		Returns:
		  - string: "" when none is pending
		  - error: Store failures
	*/
	PendingSecret(context context.Context, authID string) (string, error)

	/*
		ClearPendingSecret removes the pending secret.

		Returns:
		  - error: Store failures
	*/
	ClearPendingSecret(context context.Context, authID string) error
}
