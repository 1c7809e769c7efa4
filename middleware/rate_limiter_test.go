package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"slotify/config"
)

func TestRateLimitMiddleware_LimitsPerIP(t *testing.T) {
	orig := config.AppConfig.MaxRequestsPerMin
	config.AppConfig.MaxRequestsPerMin = 3
	defer func() { config.AppConfig.MaxRequestsPerMin = orig }()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Real-IP", ip)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// The burst allowance is MaxRequestsPerMin; the next request is rejected.
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do("203.0.113.10"), "request %d within burst", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.10"))

	// Limits are per client; another IP is unaffected.
	assert.Equal(t, http.StatusOK, do("203.0.113.11"))
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"x-forwarded-for single", "198.51.100.1", "", "10.0.0.1:1234", "198.51.100.1"},
		{"x-forwarded-for list uses first", "198.51.100.1, 10.0.0.2", "", "10.0.0.1:1234", "198.51.100.1"},
		{"x-real-ip fallback", "", "198.51.100.7", "10.0.0.1:1234", "198.51.100.7"},
		{"remote addr strips port", "", "", "10.0.0.9:4567", "10.0.0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			if tt.xff != "" {
				c.Request.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				c.Request.Header.Set("X-Real-IP", tt.xri)
			}

			assert.Equal(t, tt.want, getClientIP(c))
		})
	}
}
