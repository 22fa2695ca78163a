package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"profile-service/internal/config"
	"profile-service/internal/core"
	"profile-service/internal/models"
	"profile-service/internal/validation"
)

// Register handles user registration
// @Summary      Register
// @Description  Create an account. No token is issued; log in afterwards.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "New account"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      409   {object}  map[string]interface{}
// @Router       /api/auth/register [post]
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.app.Logger.Warn().
			Str("request_id", requestID).
			Err(err).
			Msg("Invalid JSON in registration request")
		writeError(w, h.app, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		h.app.Logger.Warn().
			Str("request_id", requestID).
			Err(err).
			Msg("Registration validation failed")
		writeError(w, h.app, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.users.Register(r.Context(), req); err != nil {
		h.writeServiceError(w, r, err, "Register failed",
			errorMessage{core.ErrPasswordTooLong, "Password must not exceed 72 bytes"},
		)
		return
	}

	writeSuccess(w, h.app, "Register success", nil)
}

// Login handles user authentication
// @Summary      Login
// @Description  Exchange email and password for a bearer token. The token is also set as an HttpOnly cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /api/auth/login [post]
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.app.Logger.Warn().
			Str("request_id", requestID).
			Err(err).
			Msg("Invalid JSON in login request")
		writeError(w, h.app, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, h.app, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.users.Login(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "Login error",
			errorMessage{core.ErrNotFound, "Email not found"},
			errorMessage{core.ErrUnauthorized, "Password incorrect"},
		)
		return
	}

	h.app.Logger.Info().
		Str("request_id", requestID).
		Str("user_id", resp.User.UserID).
		Msg("User authenticated successfully")

	http.SetCookie(w, &http.Cookie{
		Name:     config.AuthCookieName,
		Value:    resp.Token,
		Expires:  time.Unix(resp.ExpiresAt, 0),
		HttpOnly: true,
		Secure:   h.app.Config.IsProduction(),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	writeSuccess(w, h.app, "Login success", map[string]interface{}{
		"token":      resp.Token,
		"expires_at": resp.ExpiresAt,
		"user":       resp.User,
	})
}
