package auth

import (
	"time"

	"github.com/staybook/staybook-server/internal/id"
)

// Claims are the verified contents of an access token.
type Claims struct {
	UserID   id.ID
	IssuedAt time.Time
	// ExpiresAt is zero for tokens issued without a lifetime.
	ExpiresAt time.Time
}

// Expires reports whether the token carries an expiry.
func (c *Claims) Expires() bool {
	return !c.ExpiresAt.IsZero()
}
