package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_AdminOnly(t *testing.T) {
	now := time.Now()
	sessions := newTestSessionManager(t, testSecret, now)
	guard := NewGuard(sessions)

	validToken, err := sessions.NewToken(now)
	require.NoError(t, err)
	expiredToken, err := sessions.NewToken(now.Add(-8 * 24 * time.Hour))
	require.NoError(t, err)

	for name, tc := range map[string]struct {
		cookie       *http.Cookie
		expectedCode int
		expectCalled bool
	}{
		"no cookie": {
			expectedCode: http.StatusUnauthorized,
		},
		"empty cookie": {
			cookie:       &http.Cookie{Name: CookieName, Value: ""},
			expectedCode: http.StatusUnauthorized,
		},
		"garbage cookie": {
			cookie:       &http.Cookie{Name: CookieName, Value: "mylittlesecret"},
			expectedCode: http.StatusUnauthorized,
		},
		"expired session": {
			cookie:       &http.Cookie{Name: CookieName, Value: expiredToken},
			expectedCode: http.StatusUnauthorized,
		},
		"valid session": {
			cookie:       &http.Cookie{Name: CookieName, Value: validToken},
			expectedCode: http.StatusNoContent,
			expectCalled: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			called := false
			handler := guard.AdminOnly(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodDelete, "/api/admin/posts/1", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.Equal(t, tc.expectCalled, called)
			if !tc.expectCalled {
				assert.JSONEq(t, `{"message":"Unauthorized"}`, rr.Body.String())
			}
		})
	}
}

func TestGuard_Authorized_misconfigured(t *testing.T) {
	now := time.Now()
	issuer := newTestSessionManager(t, testSecret, now)
	token, err := issuer.NewToken(now)
	require.NoError(t, err)

	guard := NewGuard(NewSessionManager(Config{}))
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	assert.False(t, guard.Authorized(req))
}
