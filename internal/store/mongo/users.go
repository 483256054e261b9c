package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/id"
	"github.com/staybook/staybook-server/internal/store"
)

// CreateUser inserts a new user.
// Returns store.ErrEmailExists if the email is already registered.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)

	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) && !strings.Contains(err.Error(), "email") {
		return mapError(err, nil, store.ErrAlreadyExists)
	}
	return mapError(err, nil, store.ErrEmailExists)
}

// GetUser retrieves a user by id.
func (s *Store) GetUser(ctx context.Context, userID id.ID) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"_id": userID.String()})
}

// GetUserByEmail retrieves a user by normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapError(err, store.ErrUserNotFound, nil)
	}
	return &u, nil
}
