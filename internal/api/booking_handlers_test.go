package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/staybook/staybook-server/internal/errors"
)

func TestBookings_CreateAndListWithPlace(t *testing.T) {
	ts := setupTestServer(t, Options{})
	host, _ := ts.registerAndLogin(t, "host@example.com")
	guest, guestID := ts.registerAndLogin(t, "guest@example.com")
	place := ts.createPlace(t, host, "Harbour Loft")

	resp := ts.api.Post("/bookings", bearer(guest), map[string]any{
		"place":          place.ID.String(),
		"checkIn":        "2026-07-10",
		"checkOut":       "2026-07-13T10:00:00Z",
		"numberofGuests": 2,
		"name":           "Grace Hopper",
		"phone":          "+1 555 0100",
		"price":          360,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, place.ID.String(), created["place"])
	assert.Equal(t, guestID, created["user"])
	assert.Equal(t, "2026-07-10T00:00:00Z", created["checkIn"])

	resp = ts.api.Get("/bookings", bearer(guest))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var list []struct {
		ID    string `json:"_id"`
		Place struct {
			ID    string `json:"_id"`
			Title string `json:"title"`
		} `json:"place"`
		NumberOfGuests int     `json:"numberofGuests"`
		Price          float64 `json:"price"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created["_id"], list[0].ID)
	assert.Equal(t, place.ID.String(), list[0].Place.ID)
	assert.Equal(t, "Harbour Loft", list[0].Place.Title)
	assert.Equal(t, 2, list[0].NumberOfGuests)

	resp = ts.api.Get("/bookings", bearer(host))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())
}

func TestBookings_RequireAuth(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/bookings")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, domainerrors.CodeMissingToken, decodeError(t, resp.Body.Bytes()).Code)

	resp = ts.api.Post("/bookings", map[string]any{"place": "plc-x"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestBookings_Validation(t *testing.T) {
	ts := setupTestServer(t, Options{})
	host, _ := ts.registerAndLogin(t, "host@example.com")
	guest, _ := ts.registerAndLogin(t, "guest@example.com")
	place := ts.createPlace(t, host, "Harbour Loft")

	base := func() map[string]any {
		return map[string]any{
			"place":          place.ID.String(),
			"checkIn":        "2026-07-10",
			"checkOut":       "2026-07-12",
			"numberofGuests": 2,
			"name":           "Grace Hopper",
			"phone":          "+1 555 0100",
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
		status int
		field  string
	}{
		{"dates reversed", func(b map[string]any) { b["checkOut"] = "2026-07-01" }, http.StatusBadRequest, "checkOut"},
		{"bad date", func(b map[string]any) { b["checkIn"] = "someday" }, http.StatusBadRequest, ""},
		{"over capacity", func(b map[string]any) { b["numberofGuests"] = 9 }, http.StatusBadRequest, "numberofGuests"},
		{"missing phone", func(b map[string]any) { delete(b, "phone") }, http.StatusBadRequest, "phone"},
		{"unknown place", func(b map[string]any) { b["place"] = "plc-missing" }, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := base()
			tt.mutate(body)

			resp := ts.api.Post("/bookings", bearer(guest), body)
			require.Equal(t, tt.status, resp.Code, resp.Body.String())
			errBody := decodeError(t, resp.Body.Bytes())
			if tt.field != "" {
				assert.Contains(t, errBody.Details, tt.field)
			}
		})
	}
}
