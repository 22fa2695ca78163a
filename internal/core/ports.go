package core

import (
	"context"
	"io"
	"time"

	"profile-service/internal/models"
)

// UserRepository defines direct database operations on the users table.
type UserRepository interface {
	Create(ctx context.Context, firstName, lastName, username, email, passwordHash string) (string, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	ExistsEmailForOtherUser(ctx context.Context, email, excludingUserID string) (bool, error)
	UpdateProfile(ctx context.Context, userID, firstName, lastName, email, passwordHash string) error
	DeleteByID(ctx context.Context, userID string) error

	// Photo
	SetPhotoURL(ctx context.Context, userID string, url *string) error
	GetPhotoURL(ctx context.Context, userID string) (*string, error)

	// Health
	Now(ctx context.Context) (time.Time, error)
}

// PasswordHasher is the credential store.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenService issues and verifies signed identity tokens.
type TokenService interface {
	Issue(userID string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// PhotoStorage persists photo files and addresses them by URL.
type PhotoStorage interface {
	// Save must fail with ErrStorage instead of overwriting an existing name.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// UserService defines the auth and profile use cases.
type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) error
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.PublicUser, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) error
	DeleteAccount(ctx context.Context, userID string) error
}

// PhotoService keeps the stored photo file consistent with users.photo_url.
type PhotoService interface {
	Replace(ctx context.Context, userID, originalName string, r io.Reader) (string, error)
	Remove(ctx context.Context, userID string) error
	Discard(ctx context.Context, url *string)
}
