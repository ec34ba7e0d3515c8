//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for caseName, tc := range map[string]struct {
		body               string
		expectedStatusCode int
		expectedMessage    string
	}{
		"good creds":       {body: `{"username":"testadmin","password":"testpass"}`, expectedStatusCode: http.StatusOK, expectedMessage: "ok"},
		"wrong password":   {body: `{"username":"testadmin","password":"nope"}`, expectedStatusCode: http.StatusUnauthorized, expectedMessage: "Invalid credentials"},
		"wrong username":   {body: `{"username":"root","password":"testpass"}`, expectedStatusCode: http.StatusUnauthorized, expectedMessage: "Invalid credentials"},
		"missing password": {body: `{"username":"testadmin"}`, expectedStatusCode: http.StatusBadRequest, expectedMessage: "Missing credentials"},
	} {
		resp := doRequest(ctx, t, http.MethodPost, "/api/admin/login", tc.body, nil)
		assert.Equal(t, tc.expectedStatusCode, resp.StatusCode, caseName)
		assert.Equal(t, tc.expectedMessage, resp.message(t), caseName)
	}
}

func (s *IntegrationTestSuite) TestRouteGate() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// no session
	resp := doRequest(ctx, t, http.MethodGet, "/admin", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/admin/login?from=%2Fadmin", resp.Header.Get("Location"))

	resp = doRequest(ctx, t, http.MethodGet, "/api/admin/subscribers/export", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/admin/login?from=%2Fapi%2Fadmin%2Fsubscribers%2Fexport", resp.Header.Get("Location"))

	resp = doRequest(ctx, t, http.MethodGet, "/admin/login", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(ctx, t, http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// with session
	cookie := doLogin(ctx, t)

	resp = doRequest(ctx, t, http.MethodGet, "/admin/login", "", cookie)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	resp = doRequest(ctx, t, http.MethodGet, "/admin", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	var dashboard map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Body, &dashboard))
	for _, key := range []string{"collaborations", "posts", "news", "subscribers"} {
		assert.Contains(t, dashboard, key)
	}

	// a tampered cookie is no session
	tampered := *cookie
	tampered.Value += "x"
	resp = doRequest(ctx, t, http.MethodGet, "/admin", "", &tampered)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestLogout() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp := doRequest(ctx, t, http.MethodPost, "/api/admin/logout", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", resp.message(t))
	require.Len(t, resp.Cookies, 1)
	assert.Empty(t, resp.Cookies[0].Value)
	assert.Equal(t, -1, resp.Cookies[0].MaxAge)
}
