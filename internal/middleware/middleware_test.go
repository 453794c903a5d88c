package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GoPolymarket/xterio-checker/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: "debug", Stdout: &buf})

	r := gin.New()
	r.Use(RequestLogger(log.Logger))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	reqID := rec.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, reqID)
	assert.Contains(t, buf.String(), reqID)
	assert.Contains(t, buf.String(), `"path":"/ping"`)
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler(logger.Nop()))
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("disk on fire")) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"UNEXPECTED_FAULT"`)
	assert.Contains(t, rec.Body.String(), "disk on fire")
}
