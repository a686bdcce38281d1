// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultimatemercer/identity/internal/platform/sec"
)

/*
TestGenerateSecureToken checks the token length and URL-safe alphabet.
*/
func TestGenerateSecureToken(t *testing.T) {
	token, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)

	other, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

/*
TestHashToken checks the hex SHA-256 digest.
*/
func TestHashToken(t *testing.T) {
	assert.Equal(t,
		"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		sec.HashToken("test"),
	)
	assert.Len(t, sec.HashToken("anything"), 64)
}

/*
TestTOTP round-trips a generated secret through code matching and reports
the time step each code belongs to.
*/
func TestTOTP(t *testing.T) {
	key, err := sec.NewTOTPKey("identity", "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, key.Secret)
	assert.Contains(t, key.URL, "otpauth://totp/")

	at := time.Unix(1_700_000_000, 0).UTC()
	current := sec.TOTPStep(at)

	code, err := totp.GenerateCode(key.Secret, at)
	require.NoError(t, err)

	step, ok := sec.MatchTOTP(code, key.Secret, at)
	assert.True(t, ok)
	assert.Equal(t, current, step)

	previous, err := totp.GenerateCode(key.Secret, at.Add(-sec.TOTPPeriod*time.Second))
	require.NoError(t, err)
	step, ok = sec.MatchTOTP(previous, key.Secret, at)
	assert.True(t, ok, "one step of skew is accepted")
	assert.Equal(t, current-1, step)

	stale, err := totp.GenerateCode(key.Secret, at.Add(-5*sec.TOTPPeriod*time.Second))
	require.NoError(t, err)
	next, err := totp.GenerateCode(key.Secret, at.Add(sec.TOTPPeriod*time.Second))
	require.NoError(t, err)
	if stale != code && stale != previous && stale != next {
		_, ok = sec.MatchTOTP(stale, key.Secret, at)
		assert.False(t, ok)
	}

	_, ok = sec.MatchTOTP("", key.Secret, at)
	assert.False(t, ok)
	_, ok = sec.MatchTOTP(code, "", at)
	assert.False(t, ok)
	_, ok = sec.MatchTOTP("12345", key.Secret, at)
	assert.False(t, ok)
}

/*
TestGenerateBackupCodes checks count, format and uniqueness.
*/
func TestGenerateBackupCodes(t *testing.T) {
	codes, err := sec.GenerateBackupCodes(sec.BackupCodeCount)
	require.NoError(t, err)
	require.Len(t, codes, sec.BackupCodeCount)

	seen := map[string]bool{}
	for _, code := range codes {
		assert.Regexp(t, `^[0-9a-f]{4}-[0-9a-f]{4}$`, code)
		assert.False(t, seen[code])
		seen[code] = true
	}
}
