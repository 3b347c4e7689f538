package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(subject, name string) (string, time.Time, error)
	TTL() time.Duration
}

// CookieSettings controls the session cookie
type CookieSettings struct {
	Name   string
	Secure bool
}

// SessionHandler issues and revokes session cookies
type SessionHandler struct {
	issuer TokenIssuer
	cookie CookieSettings
	logger *slog.Logger
}

func NewSessionHandler(logger *slog.Logger, issuer TokenIssuer, cookie CookieSettings) *SessionHandler {
	return &SessionHandler{
		issuer: issuer,
		cookie: cookie,
		logger: logger,
	}
}

// Issue signs a token for the caller and stores it in an HTTP-only cookie
func (h *SessionHandler) Issue(c *gin.Context) {
	var req IssueSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	token, expiresAt, err := h.issuer.Issue(req.Email, req.Name)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	h.setCookie(c, token, int(h.issuer.TTL().Seconds()))
	RespondOK(c, SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

// Revoke expires the session cookie
func (h *SessionHandler) Revoke(c *gin.Context) {
	h.setCookie(c, "", -1)
	RespondOK(c, gin.H{"success": true})
}

func (h *SessionHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	if h.cookie.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	}
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
