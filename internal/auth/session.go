package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var _ Checker = (*SessionManager)(nil)

// SessionManager mints and verifies the admin session token kept in the
// crossfield-admin cookie. It holds no per-session state.
type SessionManager struct {
	secret   []byte
	ttl      time.Duration
	sameSite http.SameSite
	// ability to inject the clock (for unit testing token expiry)
	NowFunc func() time.Time
}

func NewSessionManager(cfg Config) *SessionManager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	sameSite := cfg.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}
	return &SessionManager{
		secret:   []byte(cfg.SigningSecret),
		ttl:      ttl,
		sameSite: sameSite,
		NowFunc:  time.Now,
	}
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// NewToken signs a token asserting the admin role, valid for the session TTL from issuedAt.
func (m *SessionManager) NewToken(issuedAt time.Time) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrSecretNotConfigured
	}

	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Issue creates a new session token and sets it as the session cookie.
// Issuing again simply overwrites the cookie with a fresh token.
func (m *SessionManager) Issue(w http.ResponseWriter) (string, error) {
	now := m.NowFunc()
	token, err := m.NewToken(now)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  now.Add(m.ttl),
		HttpOnly: true,
		Secure:   true,
		SameSite: m.sameSite,
	})

	return token, nil
}

// Verify returns the token claims only for a well signed, unexpired admin token.
func (m *SessionManager) Verify(token string) (*Claims, bool) {
	if len(m.secret) == 0 || token == "" {
		return nil, false
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.NowFunc),
	)
	if err != nil {
		log.Tracef("[session] token rejected: %s", err)
		return nil, false
	}

	if !parsed.Valid || claims.Role != RoleAdmin {
		log.Tracef("[session] token rejected, role [%s]", claims.Role)
		return nil, false
	}

	return claims, true
}

// IsLogged reports whether the token is a valid admin session.
// An error is returned only when the manager itself is misconfigured.
func (m *SessionManager) IsLogged(_ context.Context, token string) (bool, error) {
	if len(m.secret) == 0 {
		return false, ErrSecretNotConfigured
	}
	_, ok := m.Verify(token)
	return ok, nil
}

// Clear expires the session cookie on the client immediately.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // sent as Max-Age=0
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: m.sameSite,
	})
}

// TokenFromRequest returns the session cookie value, empty if absent.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			log.Tracef("[session] read cookie: %s", err)
		}
		return ""
	}
	return cookie.Value
}
