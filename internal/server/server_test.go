package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Config{
		Host:        "localhost",
		Port:        "0",
		DataDir:     t.TempDir(),
		OverpassURL: "https://overpass-api.de/api/interpreter",
		Log:         logr.Discard(),
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestInfoEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"geofilter"`)
}

func TestOpenAPIDocument(t *testing.T) {
	srv := newTestServer(t)

	doc := srv.OpenAPI()
	require.NotNil(t, doc)
	assert.Equal(t, "geofilter API", doc.Info.Title)

	for _, path := range []string{
		"/api/v1/geometries",
		"/api/v1/geometries/{id}",
		"/api/v1/boundaries/search",
		"/api/v1/isochrones",
		"/api/v1/events",
	} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
