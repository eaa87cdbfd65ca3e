// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/digitalhub/internal/platform/middleware"
	requestutil "github.com/taibuivan/digitalhub/internal/platform/request"
	"github.com/taibuivan/digitalhub/internal/platform/respond"
)

// Handler implements the HTTP layer for user account management.
//
// # Security
//
// Every route requires an authenticated caller and only ever touches the
// caller's own account.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)
	router.Patch("/me/preferences", handler.updatePreferences)

	return router
}

/*
GET /api/v1/users/me.

Description: Retrieves the full private profile of the authenticated user.

Response:
  - 200: PublicUser: Sanitised user profile
  - 401: AUTHENTICATION_ERROR: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Profile retrieved successfully", user)
}

// updateMeRequest defines the expected JSON payload for profile updates.
type updateMeRequest struct {
	Phone    *string `json:"phone"`
	FullName *string `json:"fullName"`
}

/*
PATCH /api/v1/users/me.

Description: Applies partial updates to the authenticated user's profile.
Fields other than phone and fullName are ignored.

Response:
  - 200: PublicUser: The updated profile
  - 400: VALIDATION_ERROR: Invalid phone or name
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		Phone:    input.Phone,
		FullName: input.FullName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Profile updated successfully", user)
}

/*
PATCH /api/v1/users/me/preferences.

Description: Merges the posted object into the stored preferences.

Request:
  - body: JSON object

Response:
  - 200: {preferences}: The merged document
  - 400: VALIDATION_ERROR: Not an object, empty, or too many keys
*/
func (handler *Handler) updatePreferences(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch map[string]any
	if err := requestutil.DecodeJSON(writer, request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	merged, err := handler.accountService.UpdatePreferences(request.Context(), userID, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Preferences updated successfully", map[string]any{"preferences": merged})
}
