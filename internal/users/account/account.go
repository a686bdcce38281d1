// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account manages the public profile attached to every identity.

Credentials, verification and two-factor state belong to package auth; this
package only reads and edits the [auth.UserProfile] row created alongside
them.

# Architecture

  - Entities: ProfileUpdate (partial change set), PublicProfile (anonymous view).
  - Domain: Depends on the auth package for the UserProfile entity.
  - Storage: Postgres and SQLite repositories over the same 'users' table.
*/
package account

import (
	"context"
	"time"

	"github.com/ultimatemercer/identity/internal/platform/validate"
	"github.com/ultimatemercer/identity/internal/users/auth"
	"github.com/ultimatemercer/identity/pkg/pointer"
)

// Field names used in validation details.
const (
	FieldFirstName         = "first_name"
	FieldLastName          = "last_name"
	FieldBio               = "bio"
	FieldAvatarURL         = "avatar_url"
	FieldCoverURL          = "cover_url"
	FieldLocation          = "location"
	FieldTimezone          = "timezone"
	FieldLanguage          = "language"
	FieldTheme             = "theme"
	FieldProfileVisibility = "profile_visibility"
	FieldSocialLinks       = "social_links"
)

// Length limits for free-text profile fields.
const (
	NameMaxLength     = 50
	BioMaxLength      = 500
	LocationMaxLength = 100
	CustomLinkLimit   = 10
)

// # Domain Entities

// PublicProfile is what anonymous callers see of a public profile. Account
// preferences and the invitation code stay private.
type PublicProfile struct {
	AuthID      string           `json:"auth_id"`
	Username    string           `json:"username"`
	FirstName   *string          `json:"first_name"`
	LastName    *string          `json:"last_name"`
	Bio         *string          `json:"bio"`
	AvatarURL   *string          `json:"avatar_url"`
	CoverURL    *string          `json:"cover_url"`
	SocialLinks auth.SocialLinks `json:"social_links"`
	Location    *string          `json:"location"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewPublicProfile projects profile onto [PublicProfile].
func NewPublicProfile(profile *auth.UserProfile) *PublicProfile {
	return &PublicProfile{
		AuthID:      profile.AuthID,
		Username:    profile.Username,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Bio:         profile.Bio,
		AvatarURL:   profile.AvatarURL,
		CoverURL:    profile.CoverURL,
		SocialLinks: profile.SocialLinks,
		Location:    profile.Location,
		CreatedAt:   profile.CreatedAt,
	}
}

// ProfileUpdate is a partial change set. Nil fields are left untouched; a
// pointer to "" clears an optional field.
type ProfileUpdate struct {
	FirstName         *string
	LastName          *string
	Bio               *string
	AvatarURL         *string
	CoverURL          *string
	Location          *string
	Timezone          *string
	Language          *string
	Theme             *string
	ProfileVisibility *string
	SocialLinks       *auth.SocialLinks
}

// Validate checks every field present in the update.
func (update ProfileUpdate) Validate() error {
	validator := &validate.Validator{}

	if update.FirstName != nil {
		validator.MaxLen(FieldFirstName, *update.FirstName, NameMaxLength)
	}
	if update.LastName != nil {
		validator.MaxLen(FieldLastName, *update.LastName, NameMaxLength)
	}
	if update.Bio != nil {
		validator.MaxLen(FieldBio, *update.Bio, BioMaxLength)
	}
	if update.Location != nil {
		validator.MaxLen(FieldLocation, *update.Location, LocationMaxLength)
	}
	if update.AvatarURL != nil && *update.AvatarURL != "" {
		validator.URL(FieldAvatarURL, *update.AvatarURL)
	}
	if update.CoverURL != nil && *update.CoverURL != "" {
		validator.URL(FieldCoverURL, *update.CoverURL)
	}
	if update.Timezone != nil {
		validator.Timezone(FieldTimezone, *update.Timezone)
	}
	if update.Language != nil {
		validator.Language(FieldLanguage, *update.Language)
	}
	if update.Theme != nil {
		validator.OneOf(FieldTheme, *update.Theme, auth.Themes...)
	}
	if update.ProfileVisibility != nil {
		validator.OneOf(FieldProfileVisibility, *update.ProfileVisibility, auth.Visibilities...)
	}
	if links := update.SocialLinks; links != nil {
		for _, link := range []*string{links.Website, links.Github, links.Linkedin, links.Twitter, links.Instagram, links.Youtube} {
			if link != nil && *link != "" {
				validator.URL(FieldSocialLinks, *link)
			}
		}
		validator.Custom(FieldSocialLinks, len(links.Custom) > CustomLinkLimit, "Too many custom links")
		for _, custom := range links.Custom {
			validator.Required(FieldSocialLinks, custom.Name).URL(FieldSocialLinks, custom.URL)
		}
	}

	return validator.Err()
}

// apply copies the present fields onto profile.
func (update ProfileUpdate) apply(profile *auth.UserProfile) {
	setOptional(&profile.FirstName, update.FirstName)
	setOptional(&profile.LastName, update.LastName)
	setOptional(&profile.Bio, update.Bio)
	setOptional(&profile.AvatarURL, update.AvatarURL)
	setOptional(&profile.CoverURL, update.CoverURL)
	setOptional(&profile.Location, update.Location)

	if update.Timezone != nil {
		profile.Timezone = *update.Timezone
	}
	if update.Language != nil {
		profile.Language = *update.Language
	}
	if update.Theme != nil {
		profile.Theme = *update.Theme
	}
	if update.ProfileVisibility != nil {
		profile.ProfileVisibility = *update.ProfileVisibility
	}
	if update.SocialLinks != nil {
		profile.SocialLinks = *update.SocialLinks
		if profile.SocialLinks.Custom == nil {
			profile.SocialLinks.Custom = []auth.CustomLink{}
		}
	}
}

func setOptional(target **string, value *string) {
	if value == nil {
		return
	}
	if *value == "" {
		*target = nil
		return
	}
	*target = pointer.To(*value)
}

// # Repository Contracts

// ProfileRepository defines the persistence contract for profiles.
type ProfileRepository interface {
	/*
		FindProfile retrieves the profile of a live identity.

		Parameters:
		  - context: context.Context
		  - authID: string

		Returns:
		  - *auth.UserProfile: Loaded profile, nil if absent or deactivated
		  - error: Storage failures
	*/
	FindProfile(context context.Context, authID string) (*auth.UserProfile, error)

	/*
		UpdateProfile persists the mutable fields of profile and refreshes
		its UpdatedAt.

		Parameters:
		  - context: context.Context
		  - profile: *auth.UserProfile

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	UpdateProfile(context context.Context, profile *auth.UserProfile) error
}
