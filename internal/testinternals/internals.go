package testinternals

import (
	"net/http"
	"testing"
	"time"

	"github.com/2beens/crossfield/internal/auth"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminUsername = "admin"
	AdminPassword = "correct-horse-battery"
	SigningSecret = "test-signing-secret"
)

type Internals struct {
	AuthService *auth.Service
	Sessions    *auth.SessionManager
	Guard       *auth.Guard
}

// NewTestingInternals wires the real auth components with test credentials,
// the password hash uses the cheapest bcrypt cost.
func NewTestingInternals(t *testing.T) *Internals {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	sessions := auth.NewSessionManager(auth.Config{SigningSecret: SigningSecret})
	return &Internals{
		AuthService: auth.NewAuthService(auth.Admin{
			Username:     AdminUsername,
			PasswordHash: string(hash),
		}, sessions),
		Sessions: sessions,
		Guard:    auth.NewGuard(sessions),
	}
}

// AdminCookie returns a session cookie valid for the test internals.
func (i *Internals) AdminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := i.Sessions.NewToken(time.Now())
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieName, Value: token}
}
