package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/tokenvault/internal/httputil"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		url      string
		expected httputil.Page
		errorMsg string
	}{
		{
			name:     "defaults",
			url:      "/v1/oauth-tokens",
			expected: httputil.Page{Offset: 0, Limit: httputil.DefaultPageLimit},
		},
		{
			name:     "custom window",
			url:      "/v1/oauth-tokens?offset=10&limit=20",
			expected: httputil.Page{Offset: 10, Limit: 20},
		},
		{
			name:     "max limit",
			url:      "/v1/oauth-tokens?limit=100",
			expected: httputil.Page{Offset: 0, Limit: 100},
		},
		{
			name:     "empty values use defaults",
			url:      "/v1/oauth-tokens?offset=&limit=",
			expected: httputil.Page{Offset: 0, Limit: httputil.DefaultPageLimit},
		},
		{
			name:     "negative offset",
			url:      "/v1/oauth-tokens?offset=-1",
			errorMsg: "Offset: must be no less than 0.",
		},
		{
			name:     "offset not an integer",
			url:      "/v1/oauth-tokens?offset=abc",
			errorMsg: "offset: must be an integer.",
		},
		{
			name:     "limit zero",
			url:      "/v1/oauth-tokens?limit=0",
			errorMsg: "Limit: cannot be blank.",
		},
		{
			name:     "limit exceeds max",
			url:      "/v1/oauth-tokens?limit=101",
			errorMsg: "Limit: must be no greater than 100.",
		},
		{
			name:     "limit not an integer",
			url:      "/v1/oauth-tokens?limit=xyz",
			errorMsg: "limit: must be an integer.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)

			page, err := httputil.ParsePagination(c)

			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.errorMsg, err.Error())
				assert.Equal(t, httputil.Page{}, page)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, page)
		})
	}
}
