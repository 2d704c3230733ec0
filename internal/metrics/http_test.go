package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("http_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "http_test", "/health"))
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/v1/oauth-tokens/:slug", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"slug": c.Param("slug")})
	})
	router.DELETE("/v1/oauth-tokens/:slug", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for _, slug := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/oauth-tokens/"+slug, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/oauth-tokens/a", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/missing", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(w, req)
	output := w.Body.String()

	assertBizMetricLine(
		t,
		output,
		`http_test_http_requests_total`,
		`method="GET".*path="/v1/oauth-tokens/:slug".*status_code="200"`,
		`3`,
	)
	assertBizMetricLine(
		t,
		output,
		`http_test_http_requests_total`,
		`method="DELETE".*path="/v1/oauth-tokens/:slug".*status_code="204"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`http_test_http_requests_total`,
		`method="GET".*path="unmatched".*status_code="404"`,
		`1`,
	)
	assert.NotContains(t, output, `path="/health"`)
	assert.NotContains(t, output, `path="/missing"`)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/v1/oauth-tokens/:slug", routeLabel("/v1/oauth-tokens/:slug"))
	assert.Equal(t, "unmatched", routeLabel(""))
}
