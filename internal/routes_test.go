package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"withings-mcp/internal/controllers"
	"withings-mcp/internal/structures"
	"withings-mcp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routesConfig(redirect string) *structures.Config {
	return &structures.Config{
		Withings: structures.WithingsConfig{RedirectURI: redirect},
	}
}

func TestInitRoutes_RegistersHealthAndCallback(t *testing.T) {
	svc := &stubData{}
	router := InitRoutes(
		controllers.NewHealthController(svc),
		controllers.NewCallbackController(svc, &testutil.MockLogger{}),
		routesConfig("http://localhost:8080/oauth/withings"),
	)
	routes := router.GetRoutes()

	require.Len(t, routes, 2)
	assert.Equal(t, "/health", routes[0].Url)
	assert.Equal(t, "/oauth/withings", routes[1].Url)
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	svc := &stubData{}
	router := InitRoutes(
		controllers.NewHealthController(svc),
		controllers.NewCallbackController(svc, &testutil.MockLogger{}),
		routesConfig("http://localhost:8080/callback"),
	)
	mux := router.Mux(testutil.NewMockMetrics())

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/callback?code=abc", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.codes)
}

func TestCallbackPath(t *testing.T) {
	tests := []struct {
		name     string
		redirect string
		expected string
	}{
		{"default", "http://localhost:8080/callback", "/callback"},
		{"nested", "http://127.0.0.1:9000/a/b", "/a/b"},
		{"no path", "http://localhost:8080", "/callback"},
		{"malformed", "://", "/callback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CallbackPath(routesConfig(tt.redirect)))
		})
	}
}
