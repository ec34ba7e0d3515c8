package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/2beens/crossfield/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

const (
	AdminHomePath  = "/admin"
	AdminLoginPath = "/admin/login"
	AdminAPIPrefix = "/api/admin"
)

var protectedPrefixes = []string{
	AdminHomePath,
	AdminAPIPrefix,
}

// paths under a protected prefix that must stay reachable without a session
var alwaysAllowedPaths = map[string]bool{
	AdminAPIPrefix + "/login":  true,
	AdminAPIPrefix + "/logout": true,
}

type authorizer interface {
	Authorized(r *http.Request) bool
}

// RouteGate decides, per request, whether an admin path may be served or the
// client must be sent to the login page (or away from it).
type RouteGate struct {
	authorizer     authorizer
	metricsManager *metrics.Manager
}

func NewRouteGate(authorizer authorizer, metricsManager *metrics.Manager) *RouteGate {
	return &RouteGate{
		authorizer:     authorizer,
		metricsManager: metricsManager,
	}
}

func (g *RouteGate) Handler() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if strings.HasPrefix(path, AdminLoginPath) {
				if g.authorizer.Authorized(r) {
					log.Tracef("[route gate] already logged in => %s", path)
					g.redirect(w, r, AdminHomePath, "home")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if alwaysAllowedPaths[path] || !isProtected(path) {
				next.ServeHTTP(w, r)
				return
			}

			if !g.authorizer.Authorized(r) {
				log.Tracef("[route gate] no session => %s %s", r.Method, path)
				g.redirect(w, r, LoginRedirectURL(path), "login")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *RouteGate) redirect(w http.ResponseWriter, r *http.Request, location, target string) {
	if g.metricsManager != nil {
		g.metricsManager.CounterGateRedirects.WithLabelValues(target).Inc()
	}
	http.Redirect(w, r, location, http.StatusTemporaryRedirect)
}

// LoginRedirectURL is the login page URL remembering where the client wanted to go.
func LoginRedirectURL(from string) string {
	return AdminLoginPath + "?" + url.Values{"from": {from}}.Encode()
}

// isProtected is a plain prefix match, so e.g. /administrator is protected too.
func isProtected(path string) bool {
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
