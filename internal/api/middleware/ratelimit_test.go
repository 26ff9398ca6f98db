package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/welldanyogia/estate-intake-backend/internal/logger"
)

func limitedEcho(rps float64, burst int, secLog *logger.SecurityLogger) *echo.Echo {
	e := echo.New()
	e.Use(RateLimiter(rps, burst, secLog))
	e.GET("/fetch", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})
	return e
}

func get(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/fetch", nil)
	if ip != "" {
		req.Header.Set("X-Real-IP", ip)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_WithinLimit(t *testing.T) {
	e := limitedEcho(10, 20, nil)

	assert.Equal(t, http.StatusOK, get(e, "").Code)
}

func TestRateLimiter_ExceedsLimit(t *testing.T) {
	var buf bytes.Buffer
	secLog := logger.NewSecurityLoggerWithHandler(slog.NewJSONHandler(&buf, nil))
	e := limitedEcho(1, 1, secLog)

	assert.Equal(t, http.StatusOK, get(e, "").Code)

	rec := get(e, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
	assert.Contains(t, buf.String(), "rate limit exceeded")
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	e := limitedEcho(1, 1, nil)

	assert.Equal(t, http.StatusOK, get(e, "192.168.1.1").Code)
	assert.Equal(t, http.StatusOK, get(e, "192.168.1.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(e, "192.168.1.1").Code)
}

func TestRateLimiter_BurstAllowed(t *testing.T) {
	e := limitedEcho(1, 5, nil)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(e, "").Code, "request %d should pass", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(e, "").Code)
}

func TestIPRateLimiter_GetLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(10, 20)

	l1 := limiter.GetLimiter("192.168.1.1")
	assert.NotNil(t, l1)
	assert.Same(t, l1, limiter.GetLimiter("192.168.1.1"))
	assert.NotSame(t, l1, limiter.GetLimiter("192.168.1.2"))
}

func TestIPRateLimiter_EvictsIdleClients(t *testing.T) {
	limiter := NewIPRateLimiter(10, 20)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	limiter.GetLimiter("192.168.1.1")
	limiter.GetLimiter("192.168.1.2")
	assert.Equal(t, 2, limiter.Len())

	now = now.Add(limiterIdleTTL / 2)
	limiter.GetLimiter("192.168.1.2")

	now = now.Add(limiterIdleTTL/2 + time.Second)
	limiter.GetLimiter("192.168.1.3")

	// .1 idle past the TTL, .2 seen half a TTL ago, .3 just created
	assert.Equal(t, 2, limiter.Len())
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(10))
	assert.Equal(t, 1, retryAfterSeconds(1))
	assert.Equal(t, 2, retryAfterSeconds(0.5))
	assert.Equal(t, 60, retryAfterSeconds(0))
}
