// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
	"github.com/ultimatemercer/identity/internal/platform/ctxutil"
	"github.com/ultimatemercer/identity/internal/users/auth"
)

// # Service Layer

// Service orchestrates profile reads and partial updates.
type Service struct {
	profileRepository ProfileRepository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(profileRepository ProfileRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{profileRepository: profileRepository, logger: logger}
}

/*
GetProfile retrieves the profile of a live identity.

Parameters:
  - context: context.Context
  - authID: string

Returns:
  - *auth.UserProfile: The profile
  - error: apperr.NotFound or storage failures
*/
func (service *Service) GetProfile(context context.Context, authID string) (*auth.UserProfile, error) {
	profile, err := service.profileRepository.FindProfile(context, authID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("Profile")
	}
	return profile, nil
}

// GetPublicProfile returns the public view of a profile visible to anyone.
// Private and friends-only profiles are reported as not found.
func (service *Service) GetPublicProfile(context context.Context, authID string) (*PublicProfile, error) {
	profile, err := service.GetProfile(context, authID)
	if err != nil {
		return nil, err
	}
	if profile.ProfileVisibility != auth.DefaultVisibility {
		return nil, apperr.NotFound("Profile")
	}
	return NewPublicProfile(profile), nil
}

/*
UpdateProfile validates and applies a partial set of changes.

Parameters:
  - context: context.Context
  - authID: string
  - update: ProfileUpdate

Returns:
  - *auth.UserProfile: The updated profile
  - error: VALIDATION_ERROR, apperr.NotFound or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, authID string, update ProfileUpdate) (*auth.UserProfile, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	profile, err := service.GetProfile(context, authID)
	if err != nil {
		return nil, err
	}

	update.apply(profile)

	if err := service.profileRepository.UpdateProfile(context, profile); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.log(context).Info("profile_updated", slog.String("auth_id", authID))
	return profile, nil
}

func (service *Service) log(context context.Context) *slog.Logger {
	if logger := ctxutil.GetLogger(context); logger != slog.Default() {
		return logger
	}
	return service.logger
}
