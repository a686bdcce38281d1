// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserProfileTable represents the 'users' table
type UserProfileTable struct {
	Table             string
	ID                string
	AuthID            string
	Username          string
	FirstName         string
	LastName          string
	Bio               string
	AvatarURL         string
	CoverURL          string
	SocialLinks       string
	InvitationCode    string
	Location          string
	Timezone          string
	Language          string
	Theme             string
	ProfileVisibility string
	CreatedAt         string
	UpdatedAt         string
}

// UserProfile is the schema definition for users
var UserProfile = UserProfileTable{
	Table:             "users",
	ID:                "id",
	AuthID:            "auth_id",
	Username:          "username",
	FirstName:         "first_name",
	LastName:          "last_name",
	Bio:               "bio",
	AvatarURL:         "avatar_url",
	CoverURL:          "cover_url",
	SocialLinks:       "social_links",
	InvitationCode:    "invitation_code",
	Location:          "location",
	Timezone:          "timezone",
	Language:          "language",
	Theme:             "theme",
	ProfileVisibility: "profile_visibility",
	CreatedAt:         "created_at",
	UpdatedAt:         "updated_at",
}

// Columns returns all standard column names
func (t UserProfileTable) Columns() []string {
	return []string{
		t.ID, t.AuthID, t.Username, t.FirstName, t.LastName, t.Bio,
		t.AvatarURL, t.CoverURL, t.SocialLinks, t.InvitationCode, t.Location,
		t.Timezone, t.Language, t.Theme, t.ProfileVisibility, t.CreatedAt, t.UpdatedAt,
	}
}
