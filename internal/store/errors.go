package store

import (
	"errors"
	"fmt"
)

// Base sentinels. Backend-specific failures wrap one of these so callers
// can test with errors.Is regardless of the backend.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrClosed        = errors.New("store is closed")
)

// Entity sentinels.
var (
	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)
	ErrPlaceNotFound = fmt.Errorf("place %w", ErrNotFound)
	ErrEmailExists   = fmt.Errorf("email %w", ErrAlreadyExists)
)
