package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, CacheNoStore, resp.Header().Get("Cache-Control"))

	var healthResp HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &healthResp))

	assert.Equal(t, statusHealthy, healthResp.Status)
	assert.Equal(t, statusHealthy, healthResp.Components["database"].Status)
	assert.Equal(t, "0 places indexed", healthResp.Components["search"].Message)
	assert.Equal(t, statusHealthy, healthResp.Components["uploads"].Status)
}

func TestHealthCheck_StoreClosed(t *testing.T) {
	ts := setupTestServer(t, Options{})
	require.NoError(t, ts.store.Close())

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var healthResp HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &healthResp))
	assert.Equal(t, statusUnhealthy, healthResp.Status)
	assert.Equal(t, statusUnhealthy, healthResp.Components["database"].Status)
}
