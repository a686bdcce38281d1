// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ultimatemercer/identity/internal/platform/middleware"
	requestutil "github.com/ultimatemercer/identity/internal/platform/request"
	"github.com/ultimatemercer/identity/internal/platform/respond"
	"github.com/ultimatemercer/identity/internal/users/auth"
)

// Handler implements the HTTP layer for profile management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account endpoints.
//
// # Endpoints
//   - GET   /profile       : The caller's profile.
//   - PATCH /profile       : Partial update of the caller's profile.
//   - GET   /profiles/{id} : A public profile by identity ID.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/profiles/{id}", handler.getPublicProfile)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/profile", handler.getProfile)
		r.Patch("/profile", handler.updateProfile)
	})

	return router
}

// updateProfileRequest is the PATCH body; absent fields are left untouched.
type updateProfileRequest struct {
	FirstName         *string           `json:"first_name"`
	LastName          *string           `json:"last_name"`
	Bio               *string           `json:"bio"`
	AvatarURL         *string           `json:"avatar_url"`
	CoverURL          *string           `json:"cover_url"`
	Location          *string           `json:"location"`
	Timezone          *string           `json:"timezone"`
	Language          *string           `json:"language"`
	Theme             *string           `json:"theme"`
	ProfileVisibility *string           `json:"profile_visibility"`
	SocialLinks       *auth.SocialLinks `json:"social_links"`
}

/*
GET /api/v1/account/profile.

Response:
  - 200: UserProfile
  - 401: Authentication required
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	authID, err := requestutil.RequireAuthID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), authID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
PATCH /api/v1/account/profile.

Request:
  - body: updateProfileRequest (partial JSON)

Response:
  - 200: UserProfile
  - 400: VALIDATION_ERROR
  - 401: Authentication required
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	authID, err := requestutil.RequireAuthID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.UpdateProfile(request.Context(), authID, ProfileUpdate(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// getPublicProfile serves GET /api/v1/account/profiles/{id}.
func (handler *Handler) getPublicProfile(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.accountService.GetPublicProfile(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
