// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sec provides the cryptographic primitives of the identity core.

# Architecture

This package isolates security-sensitive code (salt generation, password
derivation, constant-time comparison, opaque tokens, TOTP and JWT signing)
from the domain logic. Nothing here touches storage, so callers are free to
run the expensive derivations before acquiring any database resource.
*/
package sec

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// # Password Parameters

const (
	// SaltLength is the number of random bytes behind a salt (512 bits).
	SaltLength = 64

	// HashKeyLength is the derived key length in bytes.
	HashKeyLength = 128

	// DefaultHashIterations is the PBKDF2 work factor used when none is configured.
	DefaultHashIterations = 100000
)

var (
	// ErrHashMismatch is returned when a candidate hash differs from the stored one.
	ErrHashMismatch = errors.New("sec: password hash mismatch")

	// ErrComparisonFailure is returned when the comparison itself cannot be
	// performed (empty stored hash, internal fault). Callers must fail closed.
	ErrComparisonFailure = errors.New("sec: password comparison failure")
)

// # Salt Generation

// GenerateSalt returns 64 random bytes encoded as standard base64.
//
// An entropy failure is returned to the caller; no weaker source is ever
// substituted.
func GenerateSalt() (string, error) {
	buffer := make([]byte, SaltLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to read salt entropy: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buffer), nil
}

// # Password Derivation

// Hasher derives password hashes with PBKDF2-HMAC-SHA512.
type Hasher struct {
	Iterations int
	KeyLength  int
}

// NewHasher returns a [Hasher] using the given work factor. A non-positive
// value falls back to [DefaultHashIterations].
func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultHashIterations
	}
	return &Hasher{Iterations: iterations, KeyLength: HashKeyLength}
}

// HashPassword derives the base64 encoded hash of password.
//
// The salt is consumed as its textual form (the bytes of the base64 string),
// not the decoded bytes, so hashes stay verifiable against rows written by
// earlier deployments. The output is deterministic for identical inputs.
func (hasher *Hasher) HashPassword(password, salt string) string {
	derived := pbkdf2.Key([]byte(password), []byte(salt), hasher.Iterations, hasher.KeyLength, sha512.New)
	return base64.StdEncoding.EncodeToString(derived)
}

// # Constant-Time Comparison

// CompareHashes reports whether candidate equals stored without leaking the
// position of the first differing byte.
//
// Both values are reduced to SHA-512 digests so the byte comparison always
// runs over 64 bytes; the length check is folded in with
// [subtle.ConstantTimeEq]. Runtime therefore depends only on input lengths.
func CompareHashes(candidate, stored string) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %v", ErrComparisonFailure, recovered)
		}
	}()

	if stored == "" {
		return ErrComparisonFailure
	}

	candidateDigest := sha512.Sum512([]byte(candidate))
	storedDigest := sha512.Sum512([]byte(stored))

	sameLength := subtle.ConstantTimeEq(int32(len(candidate)), int32(len(stored)))
	sameDigest := subtle.ConstantTimeCompare(candidateDigest[:], storedDigest[:])

	if sameLength&sameDigest != 1 {
		return ErrHashMismatch
	}
	return nil
}

// VerifyPassword is the boolean form of [CompareHashes]. Any fault is
// reported as false.
func VerifyPassword(candidate, stored string) bool {
	return CompareHashes(candidate, stored) == nil
}
