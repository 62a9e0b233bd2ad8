package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	DefaultRequestsPerMinute = 10
	DefaultWindowDuration    = time.Minute
)

type ipBucket struct {
	count     int
	resetTime time.Time
}

// AuthLimiter throttles login attempts per client IP with a fixed window.
type AuthLimiter struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	limit   int
	window  time.Duration
}

// NewAuthLimiter creates a limiter with the default window and limit.
func NewAuthLimiter() *AuthLimiter {
	return &AuthLimiter{
		buckets: make(map[string]*ipBucket),
		limit:   DefaultRequestsPerMinute,
		window:  DefaultWindowDuration,
	}
}

// Middleware rejects requests over the per-IP budget with 429.
func (l *AuthLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
			}
			return next(c)
		}
	}
}

func (l *AuthLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	bucket, ok := l.buckets[ip]
	if !ok || now.After(bucket.resetTime) {
		l.buckets[ip] = &ipBucket{count: 1, resetTime: now.Add(l.window)}
		return true
	}

	bucket.count++
	return bucket.count <= l.limit
}
