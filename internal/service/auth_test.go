package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook-server/internal/auth"
	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/store"
	"github.com/staybook/staybook-server/internal/validation"
)

// newTestStore opens an in-memory Badger store closed at test end.
func newTestStore(t *testing.T) *store.Badger {
	t.Helper()
	s, err := store.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func setupAuthTest(t *testing.T) (*AuthService, *store.Badger) {
	t.Helper()

	s := newTestStore(t)
	tokens, err := auth.NewTokenService(auth.FormatJWT, []byte("test-secret-key"), 0)
	require.NoError(t, err)

	return NewAuthService(s, tokens, validation.New(), nil), s
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, s := setupAuthTest(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Name:     "Ada",
		Email:    "  Ada@Example.com ",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.True(t, user.ID.HasPrefix("usr"))
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.PasswordHash, "public user must not carry the hash")

	stored, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, s := setupAuthTest(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterRequest{Name: "First", Email: "dup@example.com", Password: "pw-one"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Second", Email: "DUP@example.com", Password: "pw-two"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	stored, err := s.GetUserByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "First", stored.Name)

	// The original password still works.
	_, err = svc.Login(ctx, LoginRequest{Email: "dup@example.com", Password: "pw-one"})
	assert.NoError(t, err)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := setupAuthTest(t)

	tests := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{"missing name", RegisterRequest{Email: "a@example.com", Password: "pw"}, "name"},
		{"bad email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "pw"}, "email"},
		{"missing password", RegisterRequest{Name: "A", Email: "a@example.com"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domErr *domainerrors.Error
			require.ErrorAs(t, err, &domErr)
			assert.Contains(t, domErr.Details, tt.field)
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _ := setupAuthTest(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret-pw"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginRequest{Email: "ADA@example.com", Password: "secret-pw"})
	require.NoError(t, err)

	assert.Equal(t, user.ID, res.ID)
	assert.Equal(t, "ada@example.com", res.Email)
	assert.Equal(t, "Ada", res.Name)
	require.NotEmpty(t, res.AccessToken)

	got, err := svc.Authenticate(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := setupAuthTest(t)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, s := setupAuthTest(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret-pw"})
	require.NoError(t, err)
	before, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong-pw"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domainerrors.ErrWrongPassword)

	after, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAuthService_Authenticate_Errors(t *testing.T) {
	svc, _ := setupAuthTest(t)

	_, err := svc.Authenticate("")
	assert.ErrorIs(t, err, domainerrors.ErrMissingToken)

	_, err = svc.Authenticate("not.a.token")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)

	other, err := auth.NewTokenService(auth.FormatJWT, []byte("another-secret"), 0)
	require.NoError(t, err)
	foreign, err := other.Issue("usr-someone")
	require.NoError(t, err)

	_, err = svc.Authenticate(foreign)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}
