// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ultimatemercer/identity/internal/platform/ctxutil"
	"github.com/ultimatemercer/identity/internal/platform/sec"
)

// # Contracts & Types

// PasswordHasher derives the stored hash of a password. [sec.Hasher]
// satisfies it.
type PasswordHasher interface {
	HashPassword(password, salt string) string
}

// TokenIssuer creates bearer access tokens. [sec.TokenService] satisfies it.
type TokenIssuer interface {
	IssueAccessToken(subject sec.Subject, timeToLive time.Duration) (string, error)
}

// Recorder receives outcome counts and hashing latency.
type Recorder interface {
	ObserveRegistration(outcome string)
	ObserveLogin(outcome string)
	ObservePasswordHash(elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRegistration(string)        {}
func (nopRecorder) ObserveLogin(string)               {}
func (nopRecorder) ObservePasswordHash(time.Duration) {}

// Options tunes token lifetimes and labels.
type Options struct {
	AccessTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	TOTPIssuer     string
}

// Dependencies wires a [Service]. Store is required; everything else falls
// back to a working default. Without Verifications, registration issues no
// verification token; without PendingTwoFactor, two-factor setup is refused.
type Dependencies struct {
	Store            CredentialStore
	Verifications    VerificationTokenRepository
	PendingTwoFactor PendingTwoFactorRepository
	Hasher           PasswordHasher
	Tokens           TokenIssuer
	Notifier         Notifier
	Recorder         Recorder
	Logger           *slog.Logger
	Options          Options
}

// Service implements the credential lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any change to hashing, comparison
// or the uniqueness checks must be reviewed by the security team.
type Service struct {
	store         CredentialStore
	verifications VerificationTokenRepository
	pending       PendingTwoFactorRepository
	hasher        PasswordHasher
	tokens        TokenIssuer
	notifier      Notifier
	recorder      Recorder
	logger        *slog.Logger
	options       Options
	now           func() time.Time

	// dummyHash is compared against when no stored credential exists so an
	// unknown identifier costs the same as a wrong password.
	dummySalt string
	dummyHash string
}

// NewService constructs a [Service] from its dependencies.
func NewService(dependencies Dependencies) *Service {
	service := &Service{
		store:         dependencies.Store,
		verifications: dependencies.Verifications,
		pending:       dependencies.PendingTwoFactor,
		hasher:        dependencies.Hasher,
		tokens:        dependencies.Tokens,
		notifier:      dependencies.Notifier,
		recorder:      dependencies.Recorder,
		logger:        dependencies.Logger,
		options:       dependencies.Options,
		now:           func() time.Time { return time.Now().UTC() },
	}

	if service.logger == nil {
		service.logger = slog.Default()
	}
	if service.hasher == nil {
		service.hasher = sec.NewHasher(sec.DefaultHashIterations)
	}
	if service.notifier == nil {
		service.notifier = NewLogNotifier(service.logger)
	}
	if service.recorder == nil {
		service.recorder = nopRecorder{}
	}
	if service.options.AccessTokenTTL <= 0 {
		service.options.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if service.options.ResetTokenTTL <= 0 {
		service.options.ResetTokenTTL = DefaultResetTokenTTL
	}
	if service.options.TOTPIssuer == "" {
		service.options.TOTPIssuer = "identity"
	}

	service.dummySalt = "identity-timing-equaliser"
	service.dummyHash = service.hasher.HashPassword("identity-timing-equaliser", service.dummySalt)

	return service
}

// # Registration Flow

// RegisterInput holds the data required to enrol a new identity.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

/*
Register creates a password identity.

Description: Two advisory lookups (username, then email) give precise
reasons in the common case. The unique indexes decide concurrent races; a
collision they report is translated back into the same reasons.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *IdentityView: Created identity without secrets
  - error: UsernameTaken, EmailTaken, StoreUnavailable or internal failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (view *IdentityView, err error) {
	defer func() { service.recorder.ObserveRegistration(outcome(err)) }()

	if err := service.ensureAvailable(context, input.Username, input.Email); err != nil {
		return nil, err
	}

	// Hash before touching the store; no connection is held meanwhile.
	hash, salt, err := service.derive(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	identity, err := service.store.CreateIdentity(context, NewCredential{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: &hash,
		PasswordSalt: &salt,
	})
	if err != nil {
		return nil, service.translateCollision(context, input.Username, input.Email, err)
	}

	service.log(context).Info("identity_registered", slog.String("auth_id", identity.Auth.ID))
	service.issueVerification(context, identity)

	return identity.View(), nil
}

// ensureAvailable runs the sequential username then email pre-checks.
func (service *Service) ensureAvailable(context context.Context, username, email string) error {
	existing, err := service.store.FindIdentity(context, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return newError(KindUsernameTaken, FieldUsername, nil)
	}

	existing, err = service.store.FindIdentity(context, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return newError(KindEmailTaken, FieldEmail, nil)
	}

	return nil
}

// translateCollision maps a store-level DuplicateIdentity onto the
// user-facing reasons by re-querying which identifier is now taken.
func (service *Service) translateCollision(context context.Context, username, email string, err error) error {
	var collision *Error
	if !errors.As(err, &collision) || collision.Kind != KindDuplicateIdentity {
		return err
	}

	if existing, lookupErr := service.store.FindIdentity(context, username); lookupErr == nil && existing != nil {
		return newError(KindUsernameTaken, FieldUsername, collision)
	}
	if existing, lookupErr := service.store.FindIdentity(context, email); lookupErr == nil && existing != nil {
		return newError(KindEmailTaken, FieldEmail, collision)
	}

	switch collision.Field {
	case FieldUsername:
		return newError(KindUsernameTaken, FieldUsername, collision)
	case FieldEmail:
		return newError(KindEmailTaken, FieldEmail, collision)
	}
	return collision
}

// # Authentication Flow

// LoginInput defines the credentials of an authentication attempt.
type LoginInput struct {
	// Identifier is an email or a username.
	Identifier string
	Password   string
	// TOTPCode is a one-time code or a backup code; required when two-factor is on.
	TOTPCode string
}

// LoginResult is a successful authentication.
type LoginResult struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	Identity    *IdentityView `json:"identity"`
}

/*
Login verifies a password (and second factor) and issues an access token.

Description: Unknown identifiers, OAuth-only or inactive accounts and wrong
passwords all fail with the same InvalidCredential after the same amount of
hashing work.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Access token and identity
  - error: InvalidCredential, TwoFactorRequired, StoreUnavailable
*/
func (service *Service) Login(context context.Context, input LoginInput) (result *LoginResult, err error) {
	defer func() { service.recorder.ObserveLogin(outcome(err)) }()

	identity, err := service.store.FindIdentity(context, input.Identifier)
	if err != nil {
		return nil, err
	}

	if identity == nil || !identity.Auth.IsActive {
		service.burnComparison(input.Password)
		return nil, ErrInvalidCredential
	}

	if err := service.checkPassword(context, identity, input.Password); err != nil {
		return nil, err
	}

	if identity.Auth.TwoFactorEnabled {
		if strings.TrimSpace(input.TOTPCode) == "" {
			return nil, ErrTwoFactorRequired
		}
		valid, err := service.verifySecondFactor(context, identity, input.TOTPCode)
		if err != nil {
			return nil, err
		}
		if !valid {
			return nil, ErrInvalidCredential
		}
	}

	now := service.now()
	if err := service.store.RecordLogin(context, identity.Auth.ID, now); err != nil {
		return nil, err
	}
	identity.Auth.LastLogin = &now

	result = &LoginResult{TokenType: "Bearer", Identity: identity.View()}
	if service.tokens != nil {
		accessToken, err := service.tokens.IssueAccessToken(sec.Subject{
			AuthID:    identity.Auth.ID,
			Username:  identity.Auth.Username,
			TwoFactor: identity.Auth.TwoFactorEnabled,
		}, service.options.AccessTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
		}
		result.AccessToken = accessToken
		result.ExpiresIn = int64(service.options.AccessTokenTTL.Seconds())
	}

	service.log(context).Info("identity_logged_in", slog.String("auth_id", identity.Auth.ID))
	return result, nil
}

// # Identity Management

// GetIdentity returns the secret-free view of a live identity.
func (service *Service) GetIdentity(context context.Context, authID string) (*IdentityView, error) {
	identity, err := service.findLive(context, authID)
	if err != nil {
		return nil, err
	}
	return identity.View(), nil
}

/*
Deactivate soft-deletes the caller's identity after re-checking the password.

Parameters:
  - context: context.Context
  - authID: string
  - password: string (ignored for OAuth-only identities)

Returns:
  - error: InvalidCredential, NotFound or store failures
*/
func (service *Service) Deactivate(context context.Context, authID, password string) error {
	identity, err := service.findLive(context, authID)
	if err != nil {
		return err
	}

	if identity.Auth.HasPassword() {
		if err := service.checkPassword(context, identity, password); err != nil {
			return err
		}
	}

	if err := service.store.Deactivate(context, authID, service.now()); err != nil {
		return err
	}

	service.log(context).Info("identity_deactivated", slog.String("auth_id", authID))
	return nil
}

// # Helpers

func (service *Service) findLive(context context.Context, authID string) (*Identity, error) {
	identity, err := service.store.FindByID(context, authID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrNotFound
	}
	return identity, nil
}

// derive salts and hashes a password, reporting the hashing latency.
func (service *Service) derive(password string) (hash, salt string, err error) {
	salt, err = sec.GenerateSalt()
	if err != nil {
		return "", "", err
	}

	started := time.Now()
	hash = service.hasher.HashPassword(password, salt)
	service.recorder.ObservePasswordHash(time.Since(started))

	return hash, salt, nil
}

// checkPassword verifies password against the identity. Every failure,
// including a comparison fault, is InvalidCredential to the caller.
func (service *Service) checkPassword(context context.Context, identity *Identity, password string) error {
	if !identity.Auth.HasPassword() {
		service.burnComparison(password)
		return ErrInvalidCredential
	}

	started := time.Now()
	candidate := service.hasher.HashPassword(password, *identity.Auth.PasswordSalt)
	service.recorder.ObservePasswordHash(time.Since(started))

	err := sec.CompareHashes(candidate, *identity.Auth.PasswordHash)
	if err == nil {
		return nil
	}

	if errors.Is(err, sec.ErrComparisonFailure) {
		service.log(context).Error("password_comparison_failure", slog.String("auth_id", identity.Auth.ID))
		return newError(KindInvalidCredential, "", newError(KindComparisonFailure, "", err))
	}
	return ErrInvalidCredential
}

// burnComparison spends the same hashing work as a real check.
func (service *Service) burnComparison(password string) {
	candidate := service.hasher.HashPassword(password, service.dummySalt)
	_ = sec.VerifyPassword(candidate, service.dummyHash)
}

func (service *Service) log(context context.Context) *slog.Logger {
	if logger := ctxutil.GetLogger(context); logger != slog.Default() {
		return logger
	}
	return service.logger
}

// outcome labels a result for the recorder.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if kind := KindOf(err); kind != "" {
		return strings.ToLower(string(kind))
	}
	return "error"
}
