package core

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer. Repositories and services wrap these
// with fmt.Errorf("...: %w", ...) and handlers classify them with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrStorage          = errors.New("storage error")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrRegistrationFailed hides which unique field collided.
	ErrRegistrationFailed = errors.New("registration failed")
)

// MaxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = fmt.Errorf("%w: password exceeds %d bytes", ErrValidation, MaxPasswordBytes)
