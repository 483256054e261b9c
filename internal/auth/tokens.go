package auth

import (
	"fmt"
	"strings"
	"time"

	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/id"
)

const tokenIssuer = "staybook-server"

// Token formats.
const (
	FormatJWT    = "jwt"
	FormatPaseto = "paseto"
)

// TokenService issues and verifies bearer tokens that carry a user id.
type TokenService interface {
	// Issue signs a token for userID.
	Issue(userID id.ID) (string, error)
	// Verify returns the claims of a valid token. It fails with
	// errors.ErrMissingToken for an empty token and errors.ErrInvalidToken
	// for anything that does not verify.
	Verify(token string) (*Claims, error)
}

// NewTokenService returns the TokenService for format. A ttl of zero issues
// tokens that never expire.
func NewTokenService(format string, secret []byte, ttl time.Duration) (TokenService, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret cannot be empty")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl cannot be negative")
	}

	switch strings.ToLower(format) {
	case "", FormatJWT:
		return NewJWTService(secret, ttl), nil
	case FormatPaseto:
		return NewPasetoService(secret, ttl)
	default:
		return nil, fmt.Errorf("unknown token format %q", format)
	}
}

// invalidToken wraps cause as an INVALID_TOKEN domain error.
func invalidToken(cause error) error {
	return domainerrors.ErrInvalidToken.WithCause(cause)
}

// claimsFor checks the raw subject and builds Claims.
func claimsFor(subject string, issuedAt, expiresAt time.Time) (*Claims, error) {
	userID, err := id.Parse(subject)
	if err != nil {
		return nil, invalidToken(err)
	}
	return &Claims{UserID: userID, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}
