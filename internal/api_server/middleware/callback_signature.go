package middleware

import (
	"log/slog"
	"net/http"

	"github.com/blog-commerce-backend/internal/platform/gateway"
	"github.com/gin-gonic/gin"
)

// CallbackSignature authenticates a gateway return before any store access. The
// signature travels in the query string of the URL handed to the gateway at checkout.
// An empty secret turns verification off.
func CallbackSignature(logger *slog.Logger, secret, outcome, param string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		signature := c.Query(gateway.SignatureParam)
		if signature == "" {
			rejectCallback(c, logger, "missing signature")
			return
		}
		if !gateway.VerifyReturn(secret, outcome, c.Param(param), signature) {
			rejectCallback(c, logger, "signature mismatch")
			return
		}
		c.Next()
	}
}

func rejectCallback(c *gin.Context, logger *slog.Logger, reason string) {
	logger.Warn("Rejected gateway callback",
		"path", c.Request.URL.Path,
		"reason", reason,
		"client_ip", c.ClientIP(),
	)
	abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid callback signature")
}
