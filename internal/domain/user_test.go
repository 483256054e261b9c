package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestUser_Public(t *testing.T) {
	u := &User{ID: "usr-1", Name: "Ada", Email: "ada@example.com", PasswordHash: "$2a$08$hash"}

	pub := u.Public()
	assert.Empty(t, pub.PasswordHash)
	assert.Equal(t, "$2a$08$hash", u.PasswordHash, "original must keep its hash")

	raw, err := json.Marshal(pub)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"_id":"usr-1"`)
}
