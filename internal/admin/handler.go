package admin

import (
	"context"
	_ "embed"
	"errors"
	"net/http"

	"github.com/2beens/crossfield/internal/auth"
	"github.com/2beens/crossfield/internal/collaborations"
	"github.com/2beens/crossfield/internal/middleware"
	"github.com/2beens/crossfield/internal/news"
	"github.com/2beens/crossfield/internal/posts"
	"github.com/2beens/crossfield/internal/subscribers"
	"github.com/2beens/crossfield/internal/telemetry/metrics"
	"github.com/2beens/crossfield/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const loginRateLimitKeyPrefix = "admin-login"

//go:embed login.html
var loginPage []byte

type loginRequest struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

type authService interface {
	Login(ctx context.Context, w http.ResponseWriter, creds auth.Credentials) error
	Logout(w http.ResponseWriter)
}

type adminGuard interface {
	AdminOnly(next http.HandlerFunc) http.HandlerFunc
}

type collaborationsSource interface {
	All(ctx context.Context) ([]*collaborations.Collaboration, error)
}

type postsSource interface {
	All(ctx context.Context) ([]*posts.Post, error)
}

type newsSource interface {
	All(ctx context.Context) ([]*news.Item, error)
}

type subscribersSource interface {
	All(ctx context.Context) ([]*subscribers.Subscriber, error)
}

// Sources feed the dashboard.
type Sources struct {
	Collaborations collaborationsSource
	Posts          postsSource
	News           newsSource
	Subscribers    subscribersSource
}

type Dashboard struct {
	Collaborations []*collaborations.Collaboration `json:"collaborations"`
	Posts          []*posts.Post                   `json:"posts"`
	News           []*news.Item                    `json:"news"`
	Subscribers    []*subscribers.Subscriber       `json:"subscribers"`
}

type Handler struct {
	authService        authService
	guard              adminGuard
	sources            Sources
	rateLimiter        middleware.RequestRateLimiter
	loginAllowedPerMin int
	trustedProxies     pkg.TrustedProxies
	metricsManager     *metrics.Manager
}

func NewHandler(
	authService authService,
	guard adminGuard,
	sources Sources,
	rateLimiter middleware.RequestRateLimiter,
	loginAllowedPerMin int,
	trustedProxies pkg.TrustedProxies,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		authService:        authService,
		guard:              guard,
		sources:            sources,
		rateLimiter:        rateLimiter,
		loginAllowedPerMin: loginAllowedPerMin,
		trustedProxies:     trustedProxies,
		metricsManager:     metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	loginRateLimit := middleware.RateLimit(
		handler.rateLimiter,
		handler.metricsManager,
		loginRateLimitKeyPrefix,
		handler.loginAllowedPerMin,
		handler.trustedProxies,
	)

	router.HandleFunc("/admin/login", handler.handleLoginPage).Methods("GET").Name("admin-login-page")
	router.HandleFunc("/admin", handler.guard.AdminOnly(handler.handleDashboard)).Methods("GET").Name("admin-dashboard")
	router.Handle("/api/admin/login", loginRateLimit(http.HandlerFunc(handler.handleLogin))).Methods("POST", "OPTIONS").Name("admin-login")
	router.HandleFunc("/api/admin/logout", handler.handleLogout).Methods("POST", "OPTIONS").Name("admin-logout")
}

func (handler *Handler) handleLoginPage(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponseBytesOK(w, pkg.ContentType.HTML, loginPage)
}

func (handler *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dashboard := Dashboard{}

	var err, loadErr error
	dashboard.Collaborations, loadErr = handler.sources.Collaborations.All(ctx)
	err = multierr.Append(err, loadErr)
	dashboard.Posts, loadErr = handler.sources.Posts.All(ctx)
	err = multierr.Append(err, loadErr)
	dashboard.News, loadErr = handler.sources.News.All(ctx)
	err = multierr.Append(err, loadErr)
	dashboard.Subscribers, loadErr = handler.sources.Subscribers.All(ctx)
	err = multierr.Append(err, loadErr)

	if err != nil {
		log.Errorf("load admin dashboard: %s", err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to load dashboard")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, dashboard)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := pkg.ReadJSONBody(w, r, &req); err != nil {
		handler.countLogin("bad_request")
		pkg.WriteMessage(w, http.StatusBadRequest, "Missing credentials")
		return
	}
	if err := pkg.Validate(req); err != nil {
		handler.countLogin("bad_request")
		pkg.WriteMessage(w, http.StatusBadRequest, "Missing credentials")
		return
	}

	err := handler.authService.Login(r.Context(), w, auth.Credentials{
		Username: *req.Username,
		Password: *req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrWrongCredentials) {
			handler.countLogin("invalid")
			pkg.WriteMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		handler.countLogin("error")
		log.Errorf("admin login: %s", err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to login")
		return
	}

	handler.countLogin("ok")
	log.Debugln("admin logged in")
	pkg.WriteMessage(w, http.StatusOK, "ok")
}

func (handler *Handler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	handler.authService.Logout(w)
	pkg.WriteMessage(w, http.StatusOK, "ok")
}

func (handler *Handler) countLogin(result string) {
	handler.metricsManager.CounterLoginAttempts.WithLabelValues(result).Inc()
}
