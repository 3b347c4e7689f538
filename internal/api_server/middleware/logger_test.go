package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blog-commerce-backend/internal/platform/session"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(buf *bytes.Buffer) *gin.Engine {
		router := gin.New()
		router.Use(CorrelationID(), Logger(slog.New(slog.NewJSONHandler(buf, nil))))
		return router
	}

	t.Run("LogsRequestDetails", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newRouter(&logBuffer)
		router.GET("/comments", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})

		req := httptest.NewRequest(http.MethodGet, "/comments?postId=abc", nil)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set(CorrelationIDHeader, "corr-1")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		logOutput := logBuffer.String()
		assert.Contains(t, logOutput, `"level":"INFO"`)
		assert.Contains(t, logOutput, `"msg":"HTTP request"`)
		assert.Contains(t, logOutput, `"method":"GET"`)
		assert.Contains(t, logOutput, `"path":"/comments?postId=abc"`)
		assert.Contains(t, logOutput, `"status":200`)
		assert.Contains(t, logOutput, `"latency":`)
		assert.Contains(t, logOutput, `"user_agent":"test-agent"`)
		assert.Contains(t, logOutput, `"correlation_id":"corr-1"`)
		assert.NotContains(t, logOutput, `"subject"`)
	})

	t.Run("LevelFollowsStatus", func(t *testing.T) {
		testCases := []struct {
			status int
			level  string
		}{
			{http.StatusNoContent, `"level":"INFO"`},
			{http.StatusNotFound, `"level":"WARN"`},
			{http.StatusBadGateway, `"level":"ERROR"`},
		}
		for _, tc := range testCases {
			var logBuffer bytes.Buffer
			router := newRouter(&logBuffer)
			router.GET("/x", func(c *gin.Context) { c.Status(tc.status) })

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Contains(t, logBuffer.String(), tc.level, "status %d", tc.status)
		}
	})

	t.Run("IncludesSessionSubject", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newRouter(&logBuffer)
		router.GET("/payment/:id", func(c *gin.Context) {
			c.Set(SessionClaimsKey, &session.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user@example.com"}})
			c.Status(http.StatusOK)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/payment/1", nil))
		assert.Contains(t, logBuffer.String(), `"subject":"user@example.com"`)
	})
}
