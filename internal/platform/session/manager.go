// Package session signs and verifies the HS256 tokens that identify a caller.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blog-commerce-backend/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSubject = errors.New("session subject is required")
	ErrInvalidToken   = errors.New("invalid session token")
)

// Claims are the identity facts carried by a session token
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session tokens with a shared secret
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

func NewManager(cfg *config.SessionConfig) *Manager {
	return &Manager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		leeway: cfg.Leeway,
		now:    time.Now,
	}
}

// TTL returns the validity window of issued tokens
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for subject valid for the configured TTL
func (m *Manager) Issue(subject, name string) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", time.Time{}, ErrMissingSubject
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm, issuer and expiry, and returns the claims
func (m *Manager) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.leeway),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
