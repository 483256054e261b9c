package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook-server/internal/auth"
	"github.com/staybook/staybook-server/internal/http/response"
	"github.com/staybook/staybook-server/internal/media/uploads"
	"github.com/staybook/staybook-server/internal/search"
	"github.com/staybook/staybook-server/internal/service"
	"github.com/staybook/staybook-server/internal/store"
	"github.com/staybook/staybook-server/internal/validation"
)

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api    humatest.TestAPI
	store  *store.Badger
	tokens auth.TokenService
}

// setupTestServer creates a server over an in-memory store, a temp search
// index and temp upload storage.
func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	st, err := store.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := auth.NewTokenService(auth.FormatJWT, []byte("test-secret-key-for-testing-only"), 0)
	require.NoError(t, err)

	index, err := search.NewSearchIndex(search.Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	uploadStorage, err := uploads.NewStorage(t.TempDir(), nil)
	require.NoError(t, err)

	v := validation.New()
	places := service.NewPlaceService(st, v, nil)
	places.SetSearchIndex(index)
	places.SetPlaceholderSource(uploadStorage)

	services := &Services{
		Auth:    service.NewAuthService(st, tokens, v, nil),
		Place:   places,
		Booking: service.NewBookingService(st, v, service.BookingOptions{}, nil),
		Search:  service.NewSearchService(index, st, nil),
	}

	s := NewServer(st, services, &StorageServices{Uploads: uploadStorage}, opts, nil)
	t.Cleanup(func() { _ = s.Shutdown() })

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
		tokens: tokens,
	}
}

// registerAndLogin creates a user through the API and returns its token
// and id.
func (ts *testServer) registerAndLogin(t *testing.T, email string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/register", map[string]any{
		"name":     "Test User",
		"email":    email,
		"password": "TestPassword123!",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/login", map[string]any{
		"email":    email,
		"password": "TestPassword123!",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body struct {
		Success bool `json:"success"`
		User    struct {
			AccessToken string `json:"access_token"`
			ID          string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotEmpty(t, body.User.AccessToken)

	return body.User.AccessToken, body.User.ID
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// decodeError parses a {success:false,...} body.
func decodeError(t *testing.T, data []byte) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(data, &body), string(data))
	assert.False(t, body.Success)
	return body
}

func TestServer_OpenAPI(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/openapi.json")
	require.Equal(t, http.StatusOK, resp.Code)

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	for _, path := range []string{"/register", "/login", "/places", "/places/{id}", "/user-places", "/bookings", "/places/search", "/health"} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestServer_BodiesCarryNoSchemaLink(t *testing.T) {
	ts := setupTestServer(t, Options{})
	token, _ := ts.registerAndLogin(t, "schema@example.com")
	created := ts.createPlace(t, token, "Harbour Loft")

	for _, path := range []string{"/places/" + created.ID.String(), "/places/plc-unknown", "/places"} {
		resp := ts.api.Get(path)
		assert.NotContains(t, resp.Body.String(), "$schema", path)
		assert.Empty(t, resp.Header().Get("Link"), path)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestServer_CORS(t *testing.T) {
	ts := setupTestServer(t, Options{CORSOrigins: []string{"https://app.example"}})

	resp := ts.api.Get("/places", "Origin: https://app.example")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "https://app.example", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header().Get("Access-Control-Allow-Credentials"))

	resp = ts.api.Get("/places", "Origin: https://evil.example")
	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSOptions(t *testing.T) {
	open := corsOptions(nil)
	assert.Equal(t, []string{"*"}, open.AllowedOrigins)
	assert.False(t, open.AllowCredentials)

	open = corsOptions([]string{"*"})
	assert.False(t, open.AllowCredentials)

	explicit := corsOptions([]string{"https://a.example", "https://b.example"})
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, explicit.AllowedOrigins)
	assert.True(t, explicit.AllowCredentials)
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "10.0.0.2", clientIP("10.0.0.2:5000"))
	assert.Equal(t, "::1", clientIP("[::1]:5000"))
	assert.Equal(t, "pipe", clientIP("pipe"))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "price", fieldName("body.price"))
	assert.Equal(t, "addedPhotos[0]", fieldName("body.addedPhotos[0]"))
	assert.Equal(t, "limit", fieldName("query.limit"))
	assert.Equal(t, "body", fieldName("body"))
}
