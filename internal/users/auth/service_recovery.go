// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ultimatemercer/identity/internal/platform/sec"
)

// # Email Verification

// issueVerification stores a verification token and hands it to the
// notifier. Failures are logged; registration has already succeeded.
func (service *Service) issueVerification(context context.Context, identity *Identity) {
	if service.verifications == nil {
		return
	}

	token, err := sec.GenerateSecureToken(secretTokenBytes)
	if err != nil {
		service.log(context).Error("verification_token_generation_failed", slog.Any("error", err))
		return
	}

	if err := service.verifications.SetVerificationToken(context, sec.HashToken(token), identity.Auth.ID, verificationTokenTTL); err != nil {
		service.log(context).Warn("verification_token_store_failed",
			slog.String("auth_id", identity.Auth.ID), slog.Any("error", err))
		return
	}

	if err := service.notifier.SendVerification(context, identity, token); err != nil {
		service.log(context).Warn("verification_notify_failed",
			slog.String("auth_id", identity.Auth.ID), slog.Any("error", err))
	}
}

/*
VerifyEmail confirms an email address with a single-use token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: VerificationTokenInvalid or store failures
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {
	if service.verifications == nil || strings.TrimSpace(token) == "" {
		return ErrVerificationTokenInvalid
	}

	authID, err := service.verifications.TakeVerificationToken(context, sec.HashToken(token))
	if err != nil {
		return err
	}

	if err := service.store.MarkEmailVerified(context, authID); err != nil {
		if KindOf(err) == KindNotFound {
			return ErrVerificationTokenInvalid
		}
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	service.log(context).Info("email_verified", slog.String("auth_id", authID))
	return nil
}

// # Password Recovery

/*
RequestPasswordReset starts the forgot-password flow.

Description: Unknown emails succeed silently so the endpoint cannot be used
to enumerate accounts. Only the token hash is persisted.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Store or entropy failures
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	identity, err := service.store.FindIdentity(context, email)
	if err != nil {
		return err
	}

	// FindIdentity also matches usernames; a reset is only sent by email.
	if identity == nil || identity.Auth.Email != email {
		service.log(context).Debug("password_reset_unknown_email")
		return nil
	}

	token, err := sec.GenerateSecureToken(secretTokenBytes)
	if err != nil {
		return fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	reset := &PasswordReset{
		AuthID:    identity.Auth.ID,
		TokenHash: sec.HashToken(token),
		ExpiresAt: service.now().Add(service.options.ResetTokenTTL),
	}
	if err := service.store.CreatePasswordReset(context, reset); err != nil {
		return err
	}

	if err := service.notifier.SendPasswordReset(context, identity, token); err != nil {
		service.log(context).Warn("password_reset_notify_failed",
			slog.String("auth_id", identity.Auth.ID), slog.Any("error", err))
	}

	return nil
}

/*
ResetPassword redeems a reset token and installs a new password.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: ResetTokenInvalid or store failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return ErrResetTokenInvalid
	}

	hash, salt, err := service.derive(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_failed: %w", err)
	}

	authID, err := service.store.ConsumePasswordReset(context, sec.HashToken(token), service.now(), hash, salt)
	if err != nil {
		return err
	}

	service.log(context).Info("password_reset_completed", slog.String("auth_id", authID))
	return nil
}

/*
ChangePassword replaces the password of an authenticated identity.

Parameters:
  - context: context.Context
  - authID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: InvalidCredential, NotFound or store failures
*/
func (service *Service) ChangePassword(context context.Context, authID, currentPassword, newPassword string) error {
	identity, err := service.findLive(context, authID)
	if err != nil {
		return err
	}

	if err := service.checkPassword(context, identity, currentPassword); err != nil {
		return err
	}

	hash, salt, err := service.derive(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_failed: %w", err)
	}

	if err := service.store.UpdatePassword(context, authID, hash, salt, service.now()); err != nil {
		return err
	}

	service.log(context).Info("password_changed", slog.String("auth_id", authID))
	return nil
}
