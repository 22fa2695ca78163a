package handlers

import (
	"encoding/json"
	"net/http"

	"profile-service/internal/core"
	"profile-service/internal/models"
	"profile-service/internal/validation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Me returns the caller's public profile, unwrapped.
// @Summary      Current user
// @Tags         user
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  models.PublicUser
// @Failure      401  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/user/me [get]
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("handlers").Start(r.Context(), "Handlers.Me")
	defer span.End()

	userID, ok := getUserID(ctx)
	if !ok {
		writeError(w, h.app, http.StatusUnauthorized, "Unauthorized")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	user, err := h.users.GetProfile(ctx, userID)
	if err != nil {
		h.writeServiceError(w, r, err, "Server error",
			errorMessage{core.ErrNotFound, "User not found"},
		)
		return
	}

	writeJSON(w, h.app, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/user/update
// @Summary      Update profile
// @Description  Names and email are always replaced. Supplying currentPassword or newPassword starts a password change.
// @Tags         user
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      models.UpdateProfileRequest  true  "Profile"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Failure      409   {object}  map[string]interface{}
// @Router       /api/user/update [put]
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r.Context())
	if !ok {
		writeError(w, h.app, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.users.UpdateProfile(r.Context(), userID, req); err != nil {
		h.writeServiceError(w, r, err, "Failed to update",
			errorMessage{core.ErrUnauthorized, "Current password incorrect"},
			errorMessage{core.ErrPasswordTooLong, "New password must not exceed 72 bytes"},
			errorMessage{core.ErrValidation, "New password must be at least 6 characters"},
			errorMessage{core.ErrConflict, "Email already used by another account"},
			errorMessage{core.ErrNotFound, "User not found"},
		)
		return
	}

	writeSuccess(w, h.app, "Profile updated successfully!", nil)
}

// DeleteAccount handles DELETE /api/user/delete
// @Summary      Delete account
// @Tags         user
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/user/delete [delete]
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r.Context())
	if !ok {
		writeError(w, h.app, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.users.DeleteAccount(r.Context(), userID); err != nil {
		h.writeServiceError(w, r, err, "Failed to delete account",
			errorMessage{core.ErrNotFound, "User not found"},
		)
		return
	}

	writeSuccess(w, h.app, "Account deleted successfully", nil)
}
