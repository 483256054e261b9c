package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook-server/internal/search"
)

func TestSearchPlaces(t *testing.T) {
	ts := setupTestServer(t, Options{})
	token, _ := ts.registerAndLogin(t, "host@example.com")

	loft := ts.createPlace(t, token, "Harbour Loft")
	cabin := placeBody("Forest Cabin")
	cabin["address"] = "9 Pine Trail"
	cabin["perks"] = []string{"fireplace"}
	cabin["price"] = 300
	resp := ts.api.Post("/places", bearer(token), cabin)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/places/search?q=harbour")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var res search.SearchResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, "harbour", res.Query)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, loft.ID, res.Hits[0].ID)

	resp = ts.api.Get("/places/search?perk=fireplace")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "Forest Cabin", res.Hits[0].Title)

	resp = ts.api.Get("/places/search?maxPrice=200")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, uint64(1), res.Total)
}

func TestSearchPlaces_BadParams(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/places/search?minPrice=300&maxPrice=100")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Get("/places/search?limit=500")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
