// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
)

// Notifier delivers out-of-band tokens (verification, password reset) to
// the owner of an identity. Delivery channels live outside this package.
type Notifier interface {
	SendVerification(context context.Context, identity *Identity, token string) error
	SendPasswordReset(context context.Context, identity *Identity, token string) error
}

// LogNotifier records that a token was issued without delivering it. It
// never writes the token itself.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a [LogNotifier].
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendVerification implements [Notifier].
func (notifier *LogNotifier) SendVerification(context context.Context, identity *Identity, _ string) error {
	notifier.logger.InfoContext(context, "verification_token_issued", slog.String("auth_id", identity.Auth.ID))
	return nil
}

// SendPasswordReset implements [Notifier].
func (notifier *LogNotifier) SendPasswordReset(context context.Context, identity *Identity, _ string) error {
	notifier.logger.InfoContext(context, "password_reset_token_issued", slog.String("auth_id", identity.Auth.ID))
	return nil
}
