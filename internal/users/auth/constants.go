// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// Defaults applied by [NewService] when [Options] leaves a TTL unset.
const (
	DefaultAccessTokenTTL = 15 * time.Minute
	DefaultResetTokenTTL  = time.Hour
)

const (
	// secretTokenBytes is the entropy of reset and verification tokens
	// before base64url encoding.
	secretTokenBytes = 32

	// verificationTokenTTL is generous; users rarely open the email at once.
	verificationTokenTTL = 24 * time.Hour

	// pendingTwoFactorTTL bounds the gap between 2FA setup and confirmation.
	pendingTwoFactorTTL = 10 * time.Minute
)
