// Package service holds the StayBook business logic: validation, ownership
// checks and orchestration of the store, cache, search index and events.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/staybook/staybook-server/internal/auth"
	"github.com/staybook/staybook-server/internal/domain"
	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/id"
	"github.com/staybook/staybook-server/internal/store"
	"github.com/staybook/staybook-server/internal/validation"
)

// AuthService handles registration, login and bearer token verification.
type AuthService struct {
	store     store.Store
	tokens    auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(st store.Store, tokens auth.TokenService, v *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     st,
		tokens:    tokens,
		validator: v,
		logger:    logger,
	}
}

// RegisterRequest contains the data for a new account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	ID          id.ID  `json:"id"`
	Name        string `json:"name"`
}

// Register creates a user. A duplicate email fails with ALREADY_EXISTS and
// leaves the existing account untouched. The returned user has no password hash.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) || errors.Is(err, auth.ErrEmptyPassword) {
			return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
				"password": err.Error(),
			})
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.AlreadyExists("Email already exists!")
		}
		return nil, domainerrors.Upstream(err, "create user")
	}

	if s.logger != nil {
		s.logger.Info("user registered", "user_id", userID)
	}

	public := user.Public()
	return &public, nil
}

// Login checks credentials and issues a token. An unknown email fails with
// USER_NOT_FOUND and a bad password with WRONG_PASSWORD. Neither changes state.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}
		return nil, domainerrors.Upstream(err, "get user")
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, domainerrors.Upstream(err, "verify password")
	}
	if !ok {
		if s.logger != nil {
			s.logger.Warn("login failed: wrong password", "user_id", user.ID)
		}
		return nil, domainerrors.ErrWrongPassword
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		AccessToken: token,
		Email:       user.Email,
		ID:          user.ID,
		Name:        user.Name,
	}, nil
}

// Authenticate verifies a bearer token and returns the user id it carries.
// Fails with MISSING_TOKEN or INVALID_TOKEN.
func (s *AuthService) Authenticate(token string) (id.ID, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return id.Nil, err
	}
	return claims.UserID, nil
}
