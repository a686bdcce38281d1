// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package constants holds the fixed values shared by the server, the CLI
// and the platform packages: build metadata, HTTP timing, header names and
// the Redis key layout.
package constants

import "time"

// # Build

const (
	AppName    = "identity-api"
	AppVersion = "0.1.0-dev"

	// AuthIssuer is the iss claim of every access token.
	AuthIssuer = "identity.api"
)

// # HTTP Timing

const (
	DefaultReadTimeout       = 5 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 2 * time.Minute

	// GlobalRequestTimeout also caps PostgreSQL statement_timeout.
	GlobalRequestTimeout = 30 * time.Second

	// StartupTimeout bounds store and cache dials at boot.
	StartupTimeout = 30 * time.Second

	// ShutdownTimeout bounds the drain of in-flight requests.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often idle per-IP buckets are swept.
	RateLimitCleanupInterval = time.Minute

	// RateLimitClientTTL is the idle time after which a bucket is dropped.
	RateLimitClientTTL = 3 * time.Minute
)

// # Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXRequestID    = "X-Request-ID"
)

// # Response Fields

const (
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Redis Keys
//
// Values are keyed by the SHA-256 of the token, or by auth ID.

const (
	RedisPrefixVerifyToken      = "identity:verify_token:"
	RedisPrefixPendingTwoFactor = "identity:pending_2fa:"
)
