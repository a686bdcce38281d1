// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
	"github.com/ultimatemercer/identity/internal/platform/constants"
	"github.com/ultimatemercer/identity/internal/platform/ctxutil"
	"github.com/ultimatemercer/identity/internal/platform/respond"
	"github.com/ultimatemercer/identity/internal/platform/sec"
)

// AccessTokenParser verifies bearer tokens. [sec.TokenService] satisfies it.
type AccessTokenParser interface {
	ParseAccessToken(raw string) (*sec.Claims, error)
}

var (
	errMalformedAuthorization = apperr.Unauthorized("Authorization header must use the Bearer scheme")
	errTokenExpired           = apperr.Unauthorized("Access token expired")
	errTokenInvalid           = apperr.Unauthorized("Access token invalid")
	errAuthenticationRequired = apperr.Unauthorized("Authentication required")
)

/*
Authenticate resolves the caller from the Authorization header.

Requests without the header continue anonymously. A header that is present
but malformed, forged or expired is rejected here with 401, so handlers
never see a half-authenticated request.
*/
func Authenticate(parser AccessTokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := request.Header.Get(constants.HeaderAuthorization)
			if header == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, raw, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
				respond.Error(writer, request, errMalformedAuthorization)
				return
			}

			claims, err := parser.ParseAccessToken(strings.TrimSpace(raw))
			if err != nil {
				if errors.Is(err, sec.ErrAccessTokenExpired) {
					respond.Error(writer, request, errTokenExpired)
					return
				}
				respond.Error(writer, request, errTokenInvalid.WithCause(err))
				return
			}

			ctx := ctxutil.WithClaims(request.Context(), claims)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("auth_id", claims.AuthID())))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests. Mount it after [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetClaims(request.Context()) == nil {
			respond.Error(writer, request, errAuthenticationRequired)
			return
		}
		next.ServeHTTP(writer, request)
	})
}
