package store

import (
	"context"
	"errors"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/id"
)

// CreateUser stores a new user. The email is normalized before storage.
// Returns ErrEmailExists if the email is already registered.
func (s *Badger) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID.IsZero() {
		return errors.New("user id is required")
	}
	user.Email = domain.NormalizeEmail(user.Email)
	return s.Users.Create(ctx, user.ID.String(), user)
}

// GetUser retrieves a user by id.
func (s *Badger) GetUser(ctx context.Context, userID id.ID) (*domain.User, error) {
	return s.Users.Get(ctx, userID.String())
}

// GetUserByEmail retrieves a user by email, ignoring case and surrounding space.
func (s *Badger) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.Users.GetByIndex(ctx, "email", email)
}
