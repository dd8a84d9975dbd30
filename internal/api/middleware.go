package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/nekogravitycat/court-docket-backend/internal/auth"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/response"
)

// RequestLogger logs one line per request, including errors attached by handlers.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if userID := auth.GetUserID(c); userID != "" {
			event = event.Str("user_id", userID)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("request")
	}
}

// RateLimit throttles each authenticated user (or client IP) with a token bucket.
// It MUST be used after auth.AuthRequired middleware to key by user.
// A non-positive rps disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiters := newKeyedLimiter(rps, burst)

	return func(c *gin.Context) {
		key := auth.GetUserID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		if !limiters.allow(key, time.Now()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorResponse{Error: "too many requests"})
			return
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyedLimiter holds one bucket per key. A bucket idle for longer than it takes
// to refill completely is indistinguishable from a new one, so it is dropped.
type keyedLimiter struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
	visitors  map[string]*visitor
}

func newKeyedLimiter(rps float64, burst int) *keyedLimiter {
	if burst < 1 {
		burst = 1
	}
	idle := time.Duration(float64(burst) / rps * float64(time.Second))
	if idle < time.Minute {
		idle = time.Minute
	}
	return &keyedLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		idleAfter: idle,
		lastSweep: time.Now(),
		visitors:  make(map[string]*visitor),
	}
}

func (k *keyedLimiter) allow(key string, now time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if now.Sub(k.lastSweep) >= k.idleAfter {
		for id, v := range k.visitors {
			if now.Sub(v.lastSeen) >= k.idleAfter {
				delete(k.visitors, id)
			}
		}
		k.lastSweep = now
	}

	v, ok := k.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(k.rps, k.burst)}
		k.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (k *keyedLimiter) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.visitors)
}
