// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
)

// # OAuth Identities

// OAuthInput describes an account asserted by an OAuth provider. The
// handshake that produced it happens elsewhere.
type OAuthInput struct {
	Provider   Provider
	ProviderID string
	Email      string
	Username   string
}

/*
RegisterOAuth returns the identity linked to the provider account, creating
a password-less one on first sight.

Description: Creation follows the same uniqueness rules as [Service.Register].
If a concurrent call linked the same provider account first, its identity
is returned.

Parameters:
  - context: context.Context
  - input: OAuthInput

Returns:
  - *IdentityView: Linked or created identity
  - bool: true when the identity was created by this call
  - error: UsernameTaken, EmailTaken, StoreUnavailable or validation failures
*/
func (service *Service) RegisterOAuth(context context.Context, input OAuthInput) (*IdentityView, bool, error) {
	if !input.Provider.Valid() || input.ProviderID == "" {
		return nil, false, apperr.ValidationError("Unsupported OAuth provider",
			apperr.FieldError{Field: FieldProvider, Message: "must be github, google or discord with a provider id"})
	}

	link := ProviderLink{Provider: input.Provider, ProviderID: input.ProviderID}

	existing, err := service.store.FindByProvider(context, link)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing.View(), false, nil
	}

	var created *Identity
	err = func() (err error) {
		defer func() { service.recorder.ObserveRegistration(outcome(err)) }()

		if err := service.ensureAvailable(context, input.Username, input.Email); err != nil {
			return err
		}

		created, err = service.store.CreateIdentity(context, NewCredential{
			Email:     input.Email,
			Username:  input.Username,
			Providers: []ProviderLink{link},
		})
		return err
	}()

	if err != nil {
		if KindOf(err) == KindDuplicateIdentity {
			if linked, lookupErr := service.store.FindByProvider(context, link); lookupErr == nil && linked != nil {
				return linked.View(), false, nil
			}
		}
		return nil, false, service.translateCollision(context, input.Username, input.Email, err)
	}

	service.log(context).Info("identity_registered_oauth",
		slog.String("auth_id", created.Auth.ID), slog.String("provider", string(input.Provider)))
	service.issueVerification(context, created)

	return created.View(), true, nil
}
