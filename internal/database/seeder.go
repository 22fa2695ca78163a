package database

import (
	"context"
	"errors"
	"time"

	"profile-service/internal/config"
	"profile-service/internal/core"
)

// SeedDefaultUser creates a default account for development environments.
func SeedDefaultUser(app *config.Application, repo core.UserRepository, hasher core.PasswordHasher) {
	if !app.Config.IsDevelopment() || app.Config.DefaultUserEmail == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := app.Config.DefaultUserEmail

	_, err := repo.FindByEmail(ctx, email)
	if err == nil {
		app.Logger.Info().Str("email", email).Msg("Default user already exists")
		return
	}
	if !errors.Is(err, core.ErrNotFound) {
		app.Logger.Error().Err(err).Msg("Failed to check for default user")
		return
	}

	hash, err := hasher.Hash(app.Config.DefaultUserPassword)
	if err != nil {
		app.Logger.Error().Err(err).Msg("Failed to hash default user password")
		return
	}

	userID, err := repo.Create(ctx, "Default", "User", "admin", email, hash)
	if err != nil {
		app.Logger.Error().Err(err).Msg("Failed to create default user")
		return
	}

	app.Logger.Info().Str("user_id", userID).Str("email", email).Msg("Default user created successfully")
}
