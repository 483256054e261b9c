package validation_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/validation"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

type stayRequest struct {
	CheckIn  time.Time `json:"checkIn" validate:"required"`
	CheckOut time.Time `json:"checkOut" validate:"required,gtfield=CheckIn"`
	Guests   int       `json:"numberofGuests" validate:"gte=1"`
	Photos   []string  `json:"photos,omitempty" validate:"max=2"`
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok, "details should be a field map")
	return details
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(registerRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter2"})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       registerRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing name",
			req:       registerRequest{Email: "ada@example.com", Password: "pw"},
			wantField: "name",
			wantMsg:   "is required",
		},
		{
			name:      "invalid email",
			req:       registerRequest{Name: "Ada", Email: "not-an-email", Password: "pw"},
			wantField: "email",
			wantMsg:   "must be a valid email address",
		},
		{
			name:      "password over bcrypt limit",
			req:       registerRequest{Name: "Ada", Email: "ada@example.com", Password: strings.Repeat("x", 73)},
			wantField: "password",
			wantMsg:   "must not exceed 72 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := detailsOf(t, v.Validate(tt.req))
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_ReportsEveryField(t *testing.T) {
	v := validation.New()

	details := detailsOf(t, v.Validate(registerRequest{}))
	assert.Len(t, details, 3)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.NotContains(t, details, "Email")
}

func TestValidator_CrossFieldAndCollections(t *testing.T) {
	v := validation.New()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	details := detailsOf(t, v.Validate(stayRequest{
		CheckIn:  now,
		CheckOut: now.Add(-24 * time.Hour),
		Guests:   0,
		Photos:   []string{"a", "b", "c"},
	}))

	assert.Equal(t, "must be after CheckIn", details["checkOut"])
	assert.Equal(t, "must be greater than or equal to 1", details["numberofGuests"])
	assert.Equal(t, "must not contain more than 2 items", details["photos"])
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("email", "ada@example.com", "required,email"))

	details := detailsOf(t, v.Var("email", "nope", "required,email"))
	assert.Equal(t, map[string]string{"email": "must be a valid email address"}, details)
}
