package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2beens/crossfield/internal/auth"
	"github.com/2beens/crossfield/internal/collaborations"
	"github.com/2beens/crossfield/internal/news"
	"github.com/2beens/crossfield/internal/posts"
	"github.com/2beens/crossfield/internal/subscribers"
	"github.com/2beens/crossfield/internal/telemetry/metrics"
	"github.com/2beens/crossfield/internal/testinternals"

	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type limiterStub struct {
	allowed bool
	keys    []string
	err     error
}

func (l *limiterStub) Allow(_ context.Context, key string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	l.keys = append(l.keys, key)
	if l.err != nil {
		return nil, l.err
	}
	if l.allowed {
		return &redis_rate.Result{Allowed: 1, Remaining: 4}, nil
	}
	return &redis_rate.Result{Allowed: 0, RetryAfter: 20 * time.Second}, nil
}

type sourceStub[T any] struct {
	items []T
	err   error
}

func (s sourceStub[T]) All(context.Context) ([]T, error) {
	return s.items, s.err
}

type testSetup struct {
	router         *mux.Router
	limiter        *limiterStub
	internals      *testinternals.Internals
	metricsManager *metrics.Manager
}

func newTestSetup(t *testing.T, sources Sources) *testSetup {
	t.Helper()

	s := &testSetup{
		router:         mux.NewRouter(),
		limiter:        &limiterStub{allowed: true},
		internals:      testinternals.NewTestingInternals(t),
		metricsManager: metrics.NewTestManager(),
	}
	NewHandler(s.internals.AuthService, s.internals.Guard, sources, s.limiter, 5, nil, s.metricsManager).SetupRoutes(s.router)
	return s
}

func emptySources() Sources {
	return Sources{
		Collaborations: sourceStub[*collaborations.Collaboration]{},
		Posts:          sourceStub[*posts.Post]{},
		News:           sourceStub[*news.Item]{},
		Subscribers:    sourceStub[*subscribers.Subscriber]{},
	}
}

func (s *testSetup) login(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.7:41234"
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func TestNewHandler_routes(t *testing.T) {
	s := newTestSetup(t, emptySources())

	for caseName, route := range map[string]struct {
		name   string
		path   string
		method string
	}{
		"login page": {name: "admin-login-page", path: "/admin/login", method: "GET"},
		"dashboard":  {name: "admin-dashboard", path: "/admin", method: "GET"},
		"login":      {name: "admin-login", path: "/api/admin/login", method: "POST"},
		"logout":     {name: "admin-logout", path: "/api/admin/logout", method: "POST"},
	} {
		t.Run(caseName, func(t *testing.T) {
			req, err := http.NewRequest(route.method, route.path, nil)
			require.NoError(t, err)
			muxRoute := s.router.Get(route.name)
			require.NotNil(t, muxRoute)
			assert.True(t, muxRoute.Match(req, &mux.RouteMatch{}), caseName)
		})
	}
}

func TestHandler_handleLoginPage(t *testing.T) {
	s := newTestSetup(t, emptySources())

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/login?from=%2Fadmin", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `fetch("/api/admin/login"`)
}

func TestHandler_handleLogin(t *testing.T) {
	s := newTestSetup(t, emptySources())

	rr := s.login(t, `{"username":"admin","password":"correct-horse-battery"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"ok"}`, rr.Body.String())

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	_, valid := s.internals.Sessions.Verify(cookies[0].Value)
	assert.True(t, valid)

	assert.Equal(t, []string{"admin-login:10.0.0.7"}, s.limiter.keys)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metricsManager.CounterLoginAttempts.WithLabelValues("ok")))
}

func TestHandler_handleLogin_rejected(t *testing.T) {
	s := newTestSetup(t, emptySources())

	for _, tc := range []struct {
		body            string
		expectedStatus  int
		expectedMessage string
	}{
		{body: `{"username":"admin","password":"wrong"}`, expectedStatus: http.StatusUnauthorized, expectedMessage: "Invalid credentials"},
		{body: `{"username":"Admin","password":"correct-horse-battery"}`, expectedStatus: http.StatusUnauthorized, expectedMessage: "Invalid credentials"},
		{body: `{"username":"","password":""}`, expectedStatus: http.StatusUnauthorized, expectedMessage: "Invalid credentials"},
		{body: `{"username":"admin"}`, expectedStatus: http.StatusBadRequest, expectedMessage: "Missing credentials"},
		{body: `{}`, expectedStatus: http.StatusBadRequest, expectedMessage: "Missing credentials"},
		{body: `nope`, expectedStatus: http.StatusBadRequest, expectedMessage: "Missing credentials"},
		{body: ``, expectedStatus: http.StatusBadRequest, expectedMessage: "Missing credentials"},
	} {
		rr := s.login(t, tc.body)
		assert.Equal(t, tc.expectedStatus, rr.Code, tc.body)
		assert.JSONEq(t, `{"message":"`+tc.expectedMessage+`"}`, rr.Body.String(), tc.body)
		assert.Empty(t, rr.Result().Cookies(), tc.body)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(s.metricsManager.CounterLoginAttempts.WithLabelValues("invalid")))
	assert.Equal(t, 4.0, testutil.ToFloat64(s.metricsManager.CounterLoginAttempts.WithLabelValues("bad_request")))
}

func TestHandler_handleLogin_notConfigured(t *testing.T) {
	sessions := auth.NewSessionManager(auth.Config{SigningSecret: testinternals.SigningSecret})
	authService := auth.NewAuthService(auth.Admin{}, sessions)
	metricsManager := metrics.NewTestManager()

	r := mux.NewRouter()
	NewHandler(authService, auth.NewGuard(sessions), emptySources(), &limiterStub{allowed: true}, 5, nil, metricsManager).SetupRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"admin","password":"x"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Unable to login"}`, rr.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(metricsManager.CounterLoginAttempts.WithLabelValues("error")))
}

func TestHandler_handleLogin_rateLimited(t *testing.T) {
	s := newTestSetup(t, emptySources())
	s.limiter.allowed = false

	rr := s.login(t, `{"username":"admin","password":"correct-horse-battery"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "21", rr.Header().Get("Retry-After"))
	assert.Empty(t, rr.Result().Cookies())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metricsManager.CounterRateLimitedRequests))

	s.limiter.err = errors.New("redis down")
	rr = s.login(t, `{"username":"admin","password":"correct-horse-battery"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandler_handleLogout(t *testing.T) {
	s := newTestSetup(t, emptySources())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"ok"}`, rr.Body.String())
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestHandler_handleDashboard(t *testing.T) {
	organization := "CERN"
	sources := Sources{
		Collaborations: sourceStub[*collaborations.Collaboration]{items: []*collaborations.Collaboration{
			{ID: "c1", Title: "Detector calibration", Organization: &organization, Status: collaborations.StatusPending},
		}},
		Posts:       sourceStub[*posts.Post]{items: []*posts.Post{{ID: "p1", Title: "Draft", Slug: "draft", Tags: []string{}}}},
		News:        sourceStub[*news.Item]{items: []*news.Item{}},
		Subscribers: sourceStub[*subscribers.Subscriber]{items: []*subscribers.Subscriber{{ID: "s1", Email: "ada@example.com"}}},
	}
	s := newTestSetup(t, sources)

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(s.internals.AdminCookie(t))
	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var dashboard Dashboard
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dashboard))
	require.Len(t, dashboard.Collaborations, 1)
	assert.Equal(t, "c1", dashboard.Collaborations[0].ID)
	require.Len(t, dashboard.Posts, 1)
	assert.Empty(t, dashboard.News)
	require.Len(t, dashboard.Subscribers, 1)
	assert.Equal(t, "ada@example.com", dashboard.Subscribers[0].Email)
}

func TestHandler_handleDashboard_sourceError(t *testing.T) {
	sources := emptySources()
	sources.News = sourceStub[*news.Item]{err: errors.New("db gone")}
	s := newTestSetup(t, sources)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(s.internals.AdminCookie(t))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Unable to load dashboard"}`, rr.Body.String())
}
