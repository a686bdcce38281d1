// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ultimatemercer/identity/internal/platform/sec"
)

// # Two-Factor Lifecycle

// TwoFactorSetup is the material a user needs to enrol an authenticator app.
type TwoFactorSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauth_url"`
}

// errPendingUnavailable is returned when no volatile store is configured.
var errPendingUnavailable = errors.New("auth: two-factor setup requires a pending secret store")

/*
SetupTwoFactor generates a TOTP secret and parks it until confirmed.

Parameters:
  - context: context.Context
  - authID: string
  - password: string (re-authentication)

Returns:
  - *TwoFactorSetup: Secret and otpauth:// URL
  - error: InvalidCredential, NotFound or store failures
*/
func (service *Service) SetupTwoFactor(context context.Context, authID, password string) (*TwoFactorSetup, error) {
	if service.pending == nil {
		return nil, errPendingUnavailable
	}

	identity, err := service.findLive(context, authID)
	if err != nil {
		return nil, err
	}
	if err := service.checkPassword(context, identity, password); err != nil {
		return nil, err
	}

	key, err := sec.NewTOTPKey(service.options.TOTPIssuer, identity.Auth.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_totp_generation_failed: %w", err)
	}

	if err := service.pending.SetPendingSecret(context, authID, key.Secret, pendingTwoFactorTTL); err != nil {
		return nil, fmt.Errorf("auth_service_totp_pending_failed: %w", err)
	}

	return &TwoFactorSetup{Secret: key.Secret, URL: key.URL}, nil
}

/*
ConfirmTwoFactor proves possession of the pending secret and enables
two-factor. Any previous enrolment is replaced, not mutated.

Parameters:
  - context: context.Context
  - authID: string
  - secret: string (as returned by SetupTwoFactor)
  - code: string (current TOTP code)

Returns:
  - []string: Plaintext backup codes, shown once
  - error: TwoFactorInvalid or store failures
*/
func (service *Service) ConfirmTwoFactor(context context.Context, authID, secret, code string) ([]string, error) {
	if service.pending == nil {
		return nil, errPendingUnavailable
	}

	pending, err := service.pending.PendingSecret(context, authID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_totp_pending_failed: %w", err)
	}
	if pending == "" || subtle.ConstantTimeCompare([]byte(pending), []byte(secret)) != 1 {
		return nil, ErrTwoFactorInvalid
	}
	confirmedAt := service.now()
	if _, ok := sec.MatchTOTP(code, pending, confirmedAt); !ok {
		return nil, ErrTwoFactorInvalid
	}

	backupCodes, err := sec.GenerateBackupCodes(sec.BackupCodeCount)
	if err != nil {
		return nil, fmt.Errorf("auth_service_backup_codes_failed: %w", err)
	}

	hashed := make([]string, len(backupCodes))
	for i, backupCode := range backupCodes {
		hashed[i] = sec.HashToken(backupCode)
	}

	// The confirming code counts as used so it cannot also open a session.
	record := &TwoFactorAuth{
		AuthID:      authID,
		Secret:      pending,
		BackupCodes: hashed,
		EnabledAt:   confirmedAt,
		LastUsed:    &confirmedAt,
	}
	if err := service.store.ReplaceTwoFactor(context, record); err != nil {
		return nil, err
	}

	if err := service.pending.ClearPendingSecret(context, authID); err != nil {
		service.log(context).Warn("totp_pending_clear_failed", slog.String("auth_id", authID), slog.Any("error", err))
	}

	service.log(context).Info("two_factor_enabled", slog.String("auth_id", authID))
	return backupCodes, nil
}

/*
DisableTwoFactor removes the active enrolment after re-checking the password.

Parameters:
  - context: context.Context
  - authID: string
  - password: string

Returns:
  - error: InvalidCredential, TwoFactorNotEnabled or store failures
*/
func (service *Service) DisableTwoFactor(context context.Context, authID, password string) error {
	identity, err := service.findLive(context, authID)
	if err != nil {
		return err
	}
	if err := service.checkPassword(context, identity, password); err != nil {
		return err
	}
	if !identity.Auth.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}

	if err := service.store.RemoveTwoFactor(context, authID, service.now()); err != nil {
		return err
	}

	service.log(context).Info("two_factor_disabled", slog.String("auth_id", authID))
	return nil
}

// verifySecondFactor accepts a current TOTP code or consumes one backup code.
// A TOTP code is accepted once: its time step must be later than the step
// of the last recorded use.
func (service *Service) verifySecondFactor(context context.Context, identity *Identity, code string) (bool, error) {
	record, err := service.store.FindTwoFactor(context, identity.Auth.ID)
	if err != nil {
		return false, err
	}

	now := service.now()
	if record == nil {
		// Enabled flag without an enrolment row: fall back to the inline secret.
		if identity.Auth.TwoFactorSecret == nil {
			return false, nil
		}
		_, ok := sec.MatchTOTP(code, *identity.Auth.TwoFactorSecret, now)
		return ok, nil
	}

	if step, ok := sec.MatchTOTP(code, record.Secret, now); ok {
		if record.LastUsed != nil && step <= sec.TOTPStep(*record.LastUsed) {
			service.log(context).Warn("totp_code_replayed", slog.String("auth_id", identity.Auth.ID))
			return false, nil
		}
		return true, service.store.RecordTwoFactorUse(context, record.ID, record.BackupCodes, now)
	}

	candidate := sec.HashToken(strings.ToLower(strings.TrimSpace(code)))
	matched := -1
	for i, stored := range record.BackupCodes {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1 {
			matched = i
		}
	}
	if matched < 0 {
		return false, nil
	}

	remaining := slices.Delete(slices.Clone(record.BackupCodes), matched, matched+1)
	if err := service.store.RecordTwoFactorUse(context, record.ID, remaining, now); err != nil {
		return false, err
	}

	service.log(context).Info("backup_code_consumed",
		slog.String("auth_id", identity.Auth.ID), slog.Int("remaining", len(remaining)))
	return true, nil
}
