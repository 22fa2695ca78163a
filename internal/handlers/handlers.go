package handlers

import (
	"context"
	"time"

	"profile-service/internal/config"
	"profile-service/internal/core"
	"profile-service/internal/database"
)

// StatusProbe asks the store for its clock, proving a full round trip.
type StatusProbe interface {
	Now(ctx context.Context) (time.Time, error)
}

type Handlers struct {
	app    *config.Application
	users  core.UserService
	photos core.PhotoService
	probe  StatusProbe

	// Pool checks for /status/detailed; nil without a pool.
	dbCheck func(ctx context.Context) error
	dbStats func() map[string]interface{}
}

func New(app *config.Application, users core.UserService, photos core.PhotoService, probe StatusProbe) *Handlers {
	h := &Handlers{app: app, users: users, photos: photos, probe: probe}
	if app.DB != nil {
		h.dbCheck = func(ctx context.Context) error { return database.HealthCheck(ctx, app.DB) }
		h.dbStats = func() map[string]interface{} { return database.PoolStats(app.DB) }
	}
	return h
}

var startTime = time.Now()
