package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequestLogger_LogsRequestDetails(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/fetch", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/fetch", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	logOutput := buf.String()
	assert.Contains(t, logOutput, `"method":"GET"`)
	assert.Contains(t, logOutput, `"path":"/fetch"`)
	assert.Contains(t, logOutput, `"status":200`)
	assert.Contains(t, logOutput, "latency")
	assert.Contains(t, logOutput, `"level":"INFO"`)
}

func TestRequestLogger_LogsReturnedErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "down")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, buf.String(), `"status":503`)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestRequestLogger_WarnsOnClientErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestLogger(logger))
	e.POST("/send_ca", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, map[string]string{"status": "error"})
	})

	req := httptest.NewRequest(http.MethodPost, "/send_ca", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestRecover_HandlesPanic(t *testing.T) {
	e := echo.New()
	e.Use(Recover())
	e.GET("/panic", func(c echo.Context) error {
		panic("test panic")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBodyLimit_RejectsOversizedBody(t *testing.T) {
	e := echo.New()
	e.Use(BodyLimit(1024))
	e.POST("/send_naiken", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	small := httptest.NewRequest(http.MethodPost, "/send_naiken", strings.NewReader("a=b"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, small)
	assert.Equal(t, http.StatusOK, rec.Code)

	big := httptest.NewRequest(http.MethodPost, "/send_naiken", strings.NewReader(strings.Repeat("x", 1024+multipartOverhead+2048)))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
