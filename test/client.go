//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/2beens/crossfield/internal/auth"

	"github.com/stretchr/testify/require"
)

// the session cookie is Secure, a cookie jar would never send it over plain http,
// so the tests carry it by hand
var noRedirectClient = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

type response struct {
	StatusCode int
	Header     http.Header
	Cookies    []*http.Cookie
	Body       []byte
}

func (r response) message(t *testing.T) string {
	t.Helper()
	var msg struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(r.Body, &msg), string(r.Body))
	return msg.Message
}

func doRequest(ctx context.Context, t *testing.T, method, path, body string, cookie *http.Cookie) response {
	t.Helper()

	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", serverEndpoint, path), bodyReader)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := noRedirectClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Cookies:    resp.Cookies(),
		Body:       respBytes,
	}
}

func doLogin(ctx context.Context, t *testing.T) *http.Cookie {
	t.Helper()

	resp := doRequest(ctx, t, http.MethodPost, "/api/admin/login",
		fmt.Sprintf(`{"username":%q,"password":%q}`, testUsername, testPassword), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))

	for _, c := range resp.Cookies {
		if c.Name == auth.CookieName {
			return &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	t.Fatal("no session cookie after login")
	return nil
}
