package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestHandler_index(t *testing.T) {
	for _, path := range []string{"/", "/index.html"} {
		rr := get(t, path)
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html"), path)
		assert.Contains(t, rr.Body.String(), `id="subscribeButton"`)
		assert.Contains(t, rr.Body.String(), `id="sendInput"`)
	}
}

func TestHandler_serviceWorker(t *testing.T) {
	rr := get(t, "/sw.js")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Service-Worker-Allowed"))
	assert.Contains(t, rr.Body.String(), "notificationclick")
	assert.Contains(t, rr.Body.String(), "icons8-message-96.png")
}

func TestHandler_clientScript(t *testing.T) {
	rr := get(t, "/client.js")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Service-Worker-Allowed"))
	assert.Contains(t, rr.Body.String(), "/api/v1/publicSigningKey")
	assert.Contains(t, rr.Body.String(), "Push from webpage")
}

func TestHandler_icon(t *testing.T) {
	rr := get(t, "/icons8-message-96.png")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rr.Body.String()[:4])
}

func TestHandler_notFound(t *testing.T) {
	for _, path := range []string{"/missing.js", "/../web.go", "/static/sw.js"} {
		rr := get(t, path)
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
	}
}
