package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/welldanyogia/estate-intake-backend/internal/api/response"
	"github.com/welldanyogia/estate-intake-backend/internal/logger"
)

// limiterIdleTTL is how long an idle client's limiter is kept
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter manages rate limiters per IP address
type IPRateLimiter struct {
	limiters    map[string]*clientLimiter
	mu          sync.Mutex
	rate        rate.Limit
	burst       int
	lastCleanup time.Time
	now         func() time.Time
}

// NewIPRateLimiter creates a new IP-based rate limiter
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters:    make(map[string]*clientLimiter),
		rate:        r,
		burst:       b,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// GetLimiter returns the rate limiter for the given IP. Idle entries are
// evicted as a side effect at most once per limiterIdleTTL.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastCleanup) >= limiterIdleTTL {
		i.evictIdle(now)
	}

	cl, exists := i.limiters[ip]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(i.rate, i.burst)}
		i.limiters[ip] = cl
	}
	cl.lastSeen = now

	return cl.limiter
}

// Len returns the number of tracked clients
func (i *IPRateLimiter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.limiters)
}

func (i *IPRateLimiter) evictIdle(now time.Time) {
	for ip, cl := range i.limiters {
		if now.Sub(cl.lastSeen) >= limiterIdleTTL {
			delete(i.limiters, ip)
		}
	}
	i.lastCleanup = now
}

// RateLimiter returns rate limiting middleware
func RateLimiter(requestsPerSecond float64, burst int, secLog *logger.SecurityLogger) echo.MiddlewareFunc {
	limiter := NewIPRateLimiter(rate.Limit(requestsPerSecond), burst)
	retryAfter := strconv.Itoa(retryAfterSeconds(requestsPerSecond))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			l := limiter.GetLimiter(ip)

			if !l.Allow() {
				if secLog != nil {
					secLog.RateLimitExceeded(ip, c.Path())
				}

				c.Response().Header().Set("Retry-After", retryAfter)
				return response.TooManyRequests(c)
			}

			return next(c)
		}
	}
}

func retryAfterSeconds(requestsPerSecond float64) int {
	if requestsPerSecond <= 0 {
		return 60
	}
	secs := int(1/requestsPerSecond + 0.999)
	if secs < 1 {
		secs = 1
	}
	return secs
}
