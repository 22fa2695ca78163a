package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"profile-service/internal/config"
	"profile-service/internal/core"
)

// --- Helper Functions ---

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(config.RequestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}

func getUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(config.UserIDKey).(string)
	return userID, ok && userID != ""
}

func writeJSON(w http.ResponseWriter, app *config.Application, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.Logger.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// writeResponse emits {success, message} with any extra fields at the top level.
func writeResponse(w http.ResponseWriter, app *config.Application, status int, success bool, message string, extra map[string]interface{}) {
	response := map[string]interface{}{
		"success": success,
		"message": message,
	}
	for k, v := range extra {
		response[k] = v
	}

	writeJSON(w, app, status, response)
}

func writeSuccess(w http.ResponseWriter, app *config.Application, message string, extra map[string]interface{}) {
	writeResponse(w, app, http.StatusOK, true, message, extra)
}

func writeError(w http.ResponseWriter, app *config.Application, status int, message string) {
	writeResponse(w, app, status, false, message, nil)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConflict), errors.Is(err, core.ErrRegistrationFailed):
		return http.StatusConflict
	case errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage pairs a sentinel with the client-facing text for one endpoint.
// The first match wins.
type errorMessage struct {
	err     error
	message string
}

// writeServiceError answers with a generic message; the wrapped error is only logged.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string, messages ...errorMessage) {
	status := statusFor(err)
	message := fallback
	for _, m := range messages {
		if errors.Is(err, m.err) {
			message = m.message
			break
		}
	}

	logEvent := h.app.Logger.Warn()
	if status >= http.StatusInternalServerError {
		logEvent = h.app.Logger.Error()
	}
	logEvent.
		Str("request_id", getRequestID(r.Context())).
		Int("status", status).
		Err(err).
		Msg(message)

	writeError(w, h.app, status, message)
}
