package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"profile-service/internal/core"
	"profile-service/internal/metrics"
	"profile-service/internal/storage"
	"profile-service/internal/validation"

	"github.com/rs/zerolog"
)

const (
	defaultMaxPhotoBytes = 5 << 20
	discardTimeout       = 10 * time.Second
)

var _ core.PhotoService = (*PhotoService)(nil)

type PhotoService struct {
	repo     core.UserRepository
	storage  core.PhotoStorage
	logger   zerolog.Logger
	maxBytes int64
	newName  func(ext string) string
	// discardTimeout bounds a cleanup delete once it is detached from the request.
	discardTimeout time.Duration
}

func NewPhotoService(repo core.UserRepository, store core.PhotoStorage, logger zerolog.Logger, maxBytes int64) *PhotoService {
	if maxBytes <= 0 {
		maxBytes = defaultMaxPhotoBytes
	}
	return &PhotoService{
		repo:     repo,
		storage:  store,
		logger:   logger,
		maxBytes: maxBytes,
		newName:  storage.PhotoName,

		discardTimeout: discardTimeout,
	}
}

// Replace stores the upload and points users.photo_url at it before the old
// file is touched. A crash in between leaves an orphaned file, never a
// dangling photo_url.
func (s *PhotoService) Replace(ctx context.Context, userID, originalName string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read upload: %v", core.ErrValidation, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: uploaded file is empty", core.ErrValidation)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: photo exceeds %d bytes", core.ErrValidation, s.maxBytes)
	}

	ext, err := validation.DetectImage(bytes.NewReader(data), originalName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrValidation, err)
	}

	newURL, err := s.storage.Save(ctx, s.newName(ext), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}

	oldURL, err := s.repo.GetPhotoURL(ctx, userID)
	if err != nil {
		s.Discard(ctx, &newURL)
		return "", err
	}

	if err := s.repo.SetPhotoURL(ctx, userID, &newURL); err != nil {
		s.Discard(ctx, &newURL)
		return "", err
	}

	if oldURL != nil && *oldURL != newURL {
		s.Discard(ctx, oldURL)
	}

	metrics.PhotoOperations.WithLabelValues("replace").Inc()
	s.logger.Info().Str("user_id", userID).Str("photo_url", newURL).Msg("Photo replaced")
	return newURL, nil
}

// Remove clears photo_url first and then deletes the file. Removing a photo
// that is not set succeeds.
func (s *PhotoService) Remove(ctx context.Context, userID string) error {
	oldURL, err := s.repo.GetPhotoURL(ctx, userID)
	if err != nil {
		return err
	}
	if oldURL == nil {
		return nil
	}

	if err := s.repo.SetPhotoURL(ctx, userID, nil); err != nil {
		return err
	}
	s.Discard(ctx, oldURL)

	metrics.PhotoOperations.WithLabelValues("remove").Inc()
	s.logger.Info().Str("user_id", userID).Msg("Photo removed")
	return nil
}

// Discard deletes a detached photo. Failures are logged and counted only.
func (s *PhotoService) Discard(ctx context.Context, url *string) {
	if url == nil || *url == "" {
		return
	}

	// The request may already be over; cleanup still runs, on its own deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.discardTimeout)
	defer cancel()

	if err := s.storage.Delete(ctx, *url); err != nil {
		metrics.PhotoCleanupFailures.Inc()
		event := s.logger.Warn()
		if !errors.Is(err, core.ErrStorage) {
			event = s.logger.Error()
		}
		event.Err(err).Str("photo_url", *url).Msg("Failed to delete photo file")
	}
}
