package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/blog-commerce-backend/internal/platform/session"
	"github.com/gin-gonic/gin"
)

// SessionClaimsKey is the gin context key holding *session.Claims of an authenticated caller
const SessionClaimsKey = "session_claims"

// TokenVerifier validates a raw session token
type TokenVerifier interface {
	Verify(token string) (*session.Claims, error)
}

// SessionGuard rejects requests without a valid session token. The cookie is the
// primary slot; a Bearer header is accepted for non-browser clients.
func SessionGuard(logger *slog.Logger, verifier TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			logger.Info("Rejected session token",
				"path", c.Request.URL.Path,
				"correlation_id", GetCorrelationID(c),
				"error", err,
			)
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session")
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// GetSessionClaims returns the claims set by SessionGuard, or nil
func GetSessionClaims(c *gin.Context) *session.Claims {
	if v, ok := c.Get(SessionClaimsKey); ok {
		if claims, ok := v.(*session.Claims); ok {
			return claims
		}
	}
	return nil
}
