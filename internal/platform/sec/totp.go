// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// # Two-Factor Primitives

const (
	// BackupCodeCount is the number of single-use recovery codes issued per enrolment.
	BackupCodeCount = 10

	// TOTPPeriod is the length of one TOTP time step in seconds.
	TOTPPeriod = 30
)

// totpOptions mirror the defaults of [totp.Validate]: six SHA-1 digits and
// one step of clock skew either side.
var totpOptions = totp.ValidateOpts{
	Period:    TOTPPeriod,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TOTPKey is a freshly generated shared secret and its provisioning URI.
type TOTPKey struct {
	Secret string
	URL    string
}

// NewTOTPKey generates a TOTP secret for account, labelled with issuer.
func NewTOTPKey(issuer, account string) (*TOTPKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return nil, fmt.Errorf("sec: failed to generate totp key: %w", err)
	}
	return &TOTPKey{Secret: key.Secret(), URL: key.URL()}, nil
}

// TOTPStep returns the time step that contains at.
func TOTPStep(at time.Time) uint64 {
	return uint64(at.Unix()) / TOTPPeriod
}

// MatchTOTP checks a 6-digit code against secret around at and returns the
// time step it belongs to. Callers that remember the last accepted step can
// reject codes at or before it.
func MatchTOTP(code, secret string, at time.Time) (uint64, bool) {
	if len(code) != int(totpOptions.Digits) || secret == "" {
		return 0, false
	}

	current := TOTPStep(at)
	var (
		matched uint64
		found   bool
	)
	for offset := -int64(totpOptions.Skew); offset <= int64(totpOptions.Skew); offset++ {
		step := uint64(int64(current) + offset)
		expected, err := totp.GenerateCodeCustom(secret, time.Unix(int64(step)*TOTPPeriod, 0).UTC(), totpOptions)
		if err != nil {
			return 0, false
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			matched, found = step, true
		}
	}
	return matched, found
}

// GenerateBackupCodes returns count random codes formatted as "xxxx-xxxx".
func GenerateBackupCodes(count int) ([]string, error) {
	codes := make([]string, 0, count)
	buffer := make([]byte, 4)

	for range count {
		if _, err := rand.Read(buffer); err != nil {
			return nil, fmt.Errorf("sec: failed to generate backup code: %w", err)
		}
		encoded := hex.EncodeToString(buffer)
		codes = append(codes, encoded[:4]+"-"+encoded[4:])
	}

	return codes, nil
}
