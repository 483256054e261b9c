// Package domain holds the StayBook documents shared by stores, services and the API.
package domain

import (
	"strings"
	"time"

	"github.com/staybook/staybook-server/internal/id"
)

// User is a registered account. Users are never mutated after creation.
type User struct {
	ID           id.ID     `json:"_id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"password,omitempty" bson:"password"` // Stored hashed, filter from API responses
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Public returns a copy without the password hash.
func (u *User) Public() User {
	out := *u
	out.PasswordHash = ""
	return out
}
