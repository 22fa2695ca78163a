package handlers

import (
	"context"
	"net/http"
	"time"
)

// Status reports whether the server and database are up
// @Summary      Health probe
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /status [get]
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	now, err := h.probe.Now(ctx)
	if err != nil {
		h.app.Logger.Error().
			Str("request_id", getRequestID(r.Context())).
			Err(err).
			Msg("Database status check failed")
		writeJSON(w, h.app, http.StatusServiceUnavailable, map[string]interface{}{
			"server":   "ON",
			"database": "OFF",
			"error":    "database unreachable",
		})
		return
	}

	writeJSON(w, h.app, http.StatusOK, map[string]interface{}{
		"server":   "ON",
		"database": "ON",
		"time":     now,
	})
}

// StatusDetailed adds pool statistics and probe latency
// @Summary      Detailed health
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /status/detailed [get]
func (h *Handlers) StatusDetailed(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"uptime":      time.Since(startTime).String(),
		"environment": h.app.Config.App_Env,
		"request_id":  getRequestID(r.Context()),
	}

	dbHealth := make(map[string]interface{})
	dbStart := time.Now()
	if h.dbCheck == nil {
		dbHealth["status"] = "unhealthy"
		dbHealth["error"] = "no database pool"
		health["status"] = "degraded"
	} else if err := h.dbCheck(r.Context()); err != nil {
		h.app.Logger.Error().
			Str("request_id", getRequestID(r.Context())).
			Err(err).
			Msg("Detailed database health check failed")
		dbHealth["status"] = "unhealthy"
		dbHealth["error"] = "database unreachable"
		health["status"] = "degraded"
	} else {
		dbHealth["status"] = "healthy"
		dbHealth["latency"] = time.Since(dbStart).String()
		dbHealth["stats"] = h.dbStats()
	}
	health["database"] = dbHealth

	statusCode := http.StatusOK
	if health["status"] == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeResponse(w, h.app, statusCode, health["status"] == "healthy", "Detailed health check complete", health)
}
