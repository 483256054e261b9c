package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"aidanwoods.dev/go-paseto"
	"golang.org/x/crypto/hkdf"

	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/id"
)

// pasetoKeyInfo binds derived keys to their use.
const pasetoKeyInfo = "staybook v4.local access token"

// PasetoService issues PASETO v4.local tokens.
type PasetoService struct {
	key paseto.V4SymmetricKey
	ttl time.Duration
}

// NewPasetoService derives a 256-bit v4.local key from secret with HKDF-SHA256.
func NewPasetoService(secret []byte, ttl time.Duration) (*PasetoService, error) {
	keyBytes := make([]byte, keyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(pasetoKeyInfo)), keyBytes); err != nil {
		return nil, fmt.Errorf("derive paseto key: %w", err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &PasetoService{key: key, ttl: ttl}, nil
}

// Issue implements TokenService.
func (s *PasetoService) Issue(userID id.ID) (string, error) {
	if userID.IsZero() {
		return "", errors.New("cannot issue token for empty user id")
	}

	now := time.Now()
	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(userID.String())
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	if s.ttl > 0 {
		token.SetExpiration(now.Add(s.ttl))
	}
	if err := token.Set("_id", userID.String()); err != nil {
		return "", fmt.Errorf("set token claim: %w", err)
	}

	return token.V4Encrypt(s.key, nil), nil
}

// Verify implements TokenService.
func (s *PasetoService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, domainerrors.ErrMissingToken
	}

	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(validTimeClaims)

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, invalidToken(err)
	}

	subject, err := token.GetString("_id")
	if err != nil {
		if subject, err = token.GetSubject(); err != nil {
			return nil, invalidToken(err)
		}
	}

	issuedAt, _ := token.GetIssuedAt()
	expiresAt, _ := token.GetExpiration()
	return claimsFor(subject, issuedAt, expiresAt)
}

// validTimeClaims checks nbf and exp when present. Tokens issued without a
// lifetime carry no exp claim.
func validTimeClaims(token paseto.Token) error {
	now := time.Now()
	if nbf, err := token.GetNotBefore(); err == nil && now.Before(nbf) {
		return errors.New("token is not valid yet")
	}
	if exp, err := token.GetExpiration(); err == nil && now.After(exp) {
		return errors.New("token has expired")
	}
	return nil
}
