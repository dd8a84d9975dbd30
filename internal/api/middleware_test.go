package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitPerUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/check", func(c *gin.Context) {
		c.Set("userID", c.GetHeader("X-User"))
		c.Next()
	}, RateLimit(0.001, 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/check", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("a"))
	assert.Equal(t, http.StatusOK, call("a"))
	assert.Equal(t, http.StatusTooManyRequests, call("a"))
	assert.Equal(t, http.StatusOK, call("b"), "buckets are per user")
}

func TestKeyedLimiterDropsIdleBuckets(t *testing.T) {
	k := newKeyedLimiter(1, 2)
	require.Equal(t, time.Minute, k.idleAfter)
	start := k.lastSweep

	assert.True(t, k.allow("a", start))
	assert.True(t, k.allow("a", start))
	assert.False(t, k.allow("a", start))
	assert.True(t, k.allow("b", start.Add(30*time.Second)))
	assert.Equal(t, 2, k.size())

	// "a" has been idle for a full refill, "b" has not.
	assert.True(t, k.allow("c", start.Add(time.Minute)))
	assert.Equal(t, 2, k.size())
	assert.True(t, k.allow("a", start.Add(time.Minute)))
	assert.Equal(t, 3, k.size())
}

func TestRateLimitDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/", RateLimit(0, 0), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/hearings/:id", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hearings/abc", nil))

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"path":"/hearings/:id"`)
	assert.Contains(t, out, `"status":500`)
	assert.Contains(t, out, assert.AnError.Error())
}

func TestHealthAndMetrics(t *testing.T) {
	r := NewRouter(Config{Logger: zerolog.Nop()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
