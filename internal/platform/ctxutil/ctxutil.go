// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ctxutil carries request-scoped values through [context.Context]:
the correlation ID, the request logger and the verified caller.
*/
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/ultimatemercer/identity/internal/platform/sec"
)

// key is unexported so no other package can collide with these entries.
type key uint8

const (
	requestIDKey key = iota
	loggerKey
	claimsKey
)

// # Request Tracing

// WithRequestID attaches the X-Request-ID correlation value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the correlation value, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// # Structured Logging

// WithLogger attaches a request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the request logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// # Caller

// WithClaims attaches the verified access token claims.
func WithClaims(ctx context.Context, claims *sec.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims returns the verified caller, or nil for anonymous requests.
func GetClaims(ctx context.Context) *sec.Claims {
	claims, _ := ctx.Value(claimsKey).(*sec.Claims)
	return claims
}

// AuthID returns the caller's auth ID, or "" for anonymous requests.
func AuthID(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.AuthID()
	}
	return ""
}
