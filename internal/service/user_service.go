package service

import (
	"context"
	"errors"
	"fmt"

	"profile-service/internal/core"
	"profile-service/internal/metrics"
	"profile-service/internal/models"
	"profile-service/internal/validation"

	"github.com/rs/zerolog"
)

const minPasswordLength = 6

var _ core.UserService = (*UserService)(nil)

type UserService struct {
	repo   core.UserRepository
	hasher core.PasswordHasher
	tokens core.TokenService
	photos core.PhotoService
	logger zerolog.Logger
}

func NewUserService(repo core.UserRepository, hasher core.PasswordHasher, tokens core.TokenService, photos core.PhotoService, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, tokens: tokens, photos: photos, logger: logger}
}

// --- Auth ---

// Register stores a new account. No token is issued; callers log in separately.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) error {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeFailure).Inc()
		return fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.repo.Create(ctx,
		validation.SanitizeString(req.FirstName),
		validation.SanitizeString(req.LastName),
		validation.SanitizeString(req.Username),
		req.Email, hash)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeFailure).Inc()
		if errors.Is(err, core.ErrConflict) {
			// Do not reveal which unique field collided.
			return fmt.Errorf("%w: %w", core.ErrRegistrationFailed, err)
		}
		return err
	}

	metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeSuccess).Inc()
	s.logger.Info().Str("user_id", userID).Msg("User registered")
	return nil
}

func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeFailure).Inc()
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("email not found: %w", core.ErrNotFound)
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("password incorrect: %w", core.ErrUnauthorized)
	}

	token, expiresAt, err := s.tokens.Issue(user.UserID)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeSuccess).Inc()
	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      user.Public(),
	}, nil
}

// --- Profile ---

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateProfile keeps the stored hash unless a password change was requested.
// The email pre-check is racy; the UNIQUE constraint reports the same conflict.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	hash := user.PasswordHash
	if req.ChangesPassword() {
		if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
			return fmt.Errorf("current password incorrect: %w", core.ErrUnauthorized)
		}
		if len(req.NewPassword) < minPasswordLength {
			return fmt.Errorf("%w: new password must be at least %d characters", core.ErrValidation, minPasswordLength)
		}
		if hash, err = s.hasher.Hash(req.NewPassword); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
	}

	taken, err := s.repo.ExistsEmailForOtherUser(ctx, req.Email, userID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("email already used: %w", core.ErrConflict)
	}

	err = s.repo.UpdateProfile(ctx, userID,
		validation.SanitizeString(req.FirstName),
		validation.SanitizeString(req.LastName),
		req.Email, hash)
	if err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Bool("password_changed", req.ChangesPassword()).Msg("Profile updated")
	return nil
}

// DeleteAccount removes the row and then the photo it referenced, best-effort.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	photoURL, err := s.repo.GetPhotoURL(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, userID); err != nil {
		return err
	}
	s.photos.Discard(ctx, photoURL)

	s.logger.Info().Str("user_id", userID).Msg("Account deleted")
	return nil
}
