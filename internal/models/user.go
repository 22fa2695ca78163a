package models

import (
	"time"
)

// User represents a row of the users table
type User struct {
	UserID       string    `json:"user_id" db:"user_id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password"` // Never serialize to JSON
	PhotoURL     *string   `json:"photo_url" db:"photo_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PublicUser is the only user shape returned to clients.
type PublicUser struct {
	UserID    string  `json:"user_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	PhotoURL  *string `json:"photo_url"`
}

// Public strips the password hash and timestamps.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		UserID:    u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.Email,
		PhotoURL:  u.PhotoURL,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the public profile
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expires_at"`
	User      *PublicUser `json:"user"`
}

// UpdateProfileRequest represents a profile update, optionally with a password change.
// Password length rules are enforced by the service after the current password is checked.
type UpdateProfileRequest struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=100"`
	CurrentPassword string `json:"currentPassword,omitempty" validate:"max=72"`
	NewPassword     string `json:"newPassword,omitempty" validate:"max=72"`
}

// ChangesPassword reports whether the caller asked for a password change.
func (r UpdateProfileRequest) ChangesPassword() bool {
	return r.CurrentPassword != "" || r.NewPassword != ""
}
