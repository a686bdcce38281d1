// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ultimatemercer/identity/internal/platform/constants"
	"github.com/ultimatemercer/identity/internal/platform/middleware"
	requestutil "github.com/ultimatemercer/identity/internal/platform/request"
	"github.com/ultimatemercer/identity/internal/platform/respond"
	"github.com/ultimatemercer/identity/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the credential lifecycle HTTP endpoints.
//
// # Scope
//
// Format validation (username characters, password complexity, email
// syntax) happens here; the service only enforces uniqueness and credential
// rules.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST   /register        : Creates a password identity.
//   - POST   /login           : Verifies credentials and returns a JWT.
//   - GET    /me              : Returns the caller's identity.
//   - DELETE /me              : Deactivates the caller's identity.
//   - POST   /2fa/setup       : Starts two-factor enrolment.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Delete("/me", handler.deactivate)
		r.Post("/change-password", handler.changePassword)
		r.Post("/2fa/setup", handler.setupTwoFactor)
		r.Post("/2fa/confirm", handler.confirmTwoFactor)
		r.Post("/2fa/disable", handler.disableTwoFactor)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	Code       string `json:"code"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type confirmTwoFactorRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

/*
Register creates a password identity.

POST /api/v1/auth/register

Request:
  - Body: registerRequest (Email, Username, Password)

Response:
  - 201: IdentityView
  - 400: VALIDATION_ERROR
  - 409: USERNAME_TAKEN | EMAIL_TAKEN
  - 503: SERVICE_UNAVAILABLE
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Username(FieldUsername, input.Username).
		Password(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, identity)
}

/*
Login authenticates an identity.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (Identifier, Password, optional Code)

Response:
  - 200: LoginResult
  - 401: INVALID_CREDENTIAL | TWO_FACTOR_REQUIRED
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input.Identifier = strings.TrimSpace(input.Identifier)

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, input.Identifier).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Identifier: input.Identifier,
		Password:   input.Password,
		TOTPCode:   input.Code,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
VerifyEmail redeems an email verification token.

POST /api/v1/auth/verify-email

Response:
  - 200: Confirmation message
  - 400: VERIFICATION_TOKEN_INVALID
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if strings.TrimSpace(input.Token) == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "This field is required"))
		return
	}

	if err := handler.authService.VerifyEmail(request.Context(), input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{constants.FieldMessage: "Email verified"})
}

/*
ForgotPassword requests a password reset token.

POST /api/v1/auth/forgot-password

Description: Always answers 202 for a well-formed email, registered or not.
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input.Email = strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Accepted(writer, map[string]string{
		constants.FieldMessage: "If the email is registered, a reset link has been sent",
	})
}

/*
ResetPassword redeems a reset token.

POST /api/v1/auth/reset-password

Response:
  - 200: Confirmation message
  - 400: VALIDATION_ERROR | RESET_TOKEN_INVALID
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).Password(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{constants.FieldMessage: "Password has been reset"})
}

// # Authenticated Endpoints

// me returns the caller's identity.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	authID, err := requestutil.RequireAuthID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.authService.GetIdentity(request.Context(), authID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity)
}

// deactivate soft-deletes the caller's identity. DELETE /api/v1/auth/me
func (handler *Handler) deactivate(writer http.ResponseWriter, request *http.Request) {
	authID, err := requestutil.RequireAuthID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input passwordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Deactivate(request.Context(), authID, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
ChangePassword replaces the caller's password.

POST /api/v1/auth/change-password

Response:
  - 204: Changed
  - 401: INVALID_CREDENTIAL
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	authID, err := requestutil.RequireAuthID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Password(FieldNewPassword, input.NewPassword).
		Custom(FieldNewPassword, input.NewPassword == input.CurrentPassword, "Must differ from the current password")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ChangePassword(request.Context(), authID, input.CurrentPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// setupTwoFactor starts enrolment. POST /api/v1/auth/2fa/setup
func (handler *Handler) setupTwoFactor(writer http.ResponseWriter, request *http.Request) {
	authID, err := requestutil.RequireAuthID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input passwordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	setup, err := handler.authService.SetupTwoFactor(request.Context(), authID, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, setup)
}

// confirmTwoFactor finishes enrolment and returns backup codes once.
// POST /api/v1/auth/2fa/confirm
func (handler *Handler) confirmTwoFactor(writer http.ResponseWriter, request *http.Request) {
	authID, err := requestutil.RequireAuthID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input confirmTwoFactorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldSecret, input.Secret).TOTPCode(FieldCode, input.Code)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	backupCodes, err := handler.authService.ConfirmTwoFactor(request.Context(), authID, input.Secret, input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string][]string{"backup_codes": backupCodes})
}

// disableTwoFactor removes enrolment. POST /api/v1/auth/2fa/disable
func (handler *Handler) disableTwoFactor(writer http.ResponseWriter, request *http.Request) {
	authID, err := requestutil.RequireAuthID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input passwordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.DisableTwoFactor(request.Context(), authID, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
