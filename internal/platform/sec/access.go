// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ultimatemercer/identity/pkg/uuid"
)

// Authentication methods recorded in the amr claim.
const (
	MethodPassword = "pwd"
	MethodOTP      = "otp"
)

var (
	// ErrAccessTokenExpired is returned for well-formed tokens past their expiry.
	ErrAccessTokenExpired = errors.New("sec: access token expired")

	// ErrAccessTokenInvalid covers every other verification failure.
	ErrAccessTokenInvalid = errors.New("sec: access token invalid")
)

// Subject describes the identity an access token is issued for.
type Subject struct {
	AuthID    string
	Username  string
	TwoFactor bool
}

// Claims is the payload of an identity access token. The auth ID travels
// in the registered sub claim.
type Claims struct {
	jwt.RegisteredClaims

	Username string   `json:"usr"`
	Methods  []string `json:"amr"`
}

// AuthID returns the identity the token was issued for.
func (claims *Claims) AuthID() string {
	return claims.Subject
}

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a TokenService bound to one secret and issuer.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: jwt secret must not be empty")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

/*
IssueAccessToken signs a bearer token for subject.

Parameters:
  - subject: Subject
  - timeToLive: time.Duration

Returns:
  - string: Compact JWS
  - error: Signing failures
*/
func (service *TokenService) IssueAccessToken(subject Subject, timeToLive time.Duration) (string, error) {
	issuedAt := service.now()

	methods := []string{MethodPassword}
	if subject.TwoFactor {
		methods = append(methods, MethodOTP)
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   subject.AuthID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(timeToLive)),
		},
		Username: subject.Username,
		Methods:  methods,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec_access_token_sign_failed: %w", err)
	}
	return signed, nil
}

/*
ParseAccessToken verifies signature, issuer and validity window.

Returns:
  - *Claims: Verified claims
  - error: ErrAccessTokenExpired or ErrAccessTokenInvalid
*/
func (service *TokenService) ParseAccessToken(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return service.secret, nil
	},
		jwt.WithIssuer(service.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(service.now),
		jwt.WithExpirationRequired(),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrAccessTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrAccessTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrAccessTokenInvalid
	}
	return claims, nil
}
