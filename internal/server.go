package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/crossfield/internal/admin"
	"github.com/2beens/crossfield/internal/auth"
	"github.com/2beens/crossfield/internal/cache"
	"github.com/2beens/crossfield/internal/collaborations"
	"github.com/2beens/crossfield/internal/config"
	"github.com/2beens/crossfield/internal/db"
	"github.com/2beens/crossfield/internal/middleware"
	"github.com/2beens/crossfield/internal/news"
	"github.com/2beens/crossfield/internal/posts"
	"github.com/2beens/crossfield/internal/subscribers"
	"github.com/2beens/crossfield/internal/telemetry/metrics"
	"github.com/2beens/crossfield/internal/telemetry/tracing"
	"github.com/2beens/crossfield/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter

	trustedProxies pkg.TrustedProxies

	authService *auth.Service
	guard       *auth.Guard

	postsCache cache.Cache
	newsCache  cache.Cache

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	DBPassword              string
	RedisPassword           string
	Auth                    auth.Config
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	trustedProxies, err := pkg.ParseTrustedProxies(params.Config.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBUser:         params.Config.PostgresUser,
		DBPassword:     params.DBPassword,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("crossfield", "backend", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.Setup(params.HoneycombTracingEnabled, "crossfield-backend", rdb)
	if err != nil {
		return nil, err
	}

	sessions := auth.NewSessionManager(params.Auth)
	if params.Auth.SigningSecret == "" {
		log.Errorln("session signing secret not set, admin logins will fail")
	}

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		redisClient: rdb,
		rateLimiter: redis_rate.NewLimiter(rdb),

		trustedProxies: trustedProxies,

		authService: auth.NewAuthService(params.Auth.Admin, sessions),
		guard:       auth.NewGuard(sessions),

		postsCache: cache.NewSlugCache(params.Config.SlugCacheSizeMB, cache.DefaultTTL),
		newsCache:  cache.NewSlugCache(params.Config.SlugCacheSizeMB, cache.DefaultTTL),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

// routerSetup returns the whole request chain. The route gate and CORS sit in
// front of the router, so they also see paths no route matches.
func (s *Server) routerSetup() http.Handler {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("crossfield-router"))

	collaborationsRepo := collaborations.NewRepo(s.dbPool)
	postsRepo := posts.NewRepo(s.dbPool)
	newsRepo := news.NewRepo(s.dbPool)
	subscribersRepo := subscribers.NewRepo(s.dbPool)

	collaborations.NewHandler(collaborationsRepo, s.guard, s.metricsManager).SetupRoutes(r)
	posts.NewHandler(postsRepo, s.guard, s.postsCache).SetupRoutes(r)
	news.NewHandler(newsRepo, s.guard, s.newsCache).SetupRoutes(r)
	subscribers.NewHandler(subscribersRepo, s.guard, s.metricsManager).SetupRoutes(r)

	admin.NewHandler(
		s.authService,
		s.guard,
		admin.Sources{
			Collaborations: collaborationsRepo,
			Posts:          postsRepo,
			News:           newsRepo,
			Subscribers:    subscribersRepo,
		},
		s.rateLimiter,
		s.config.LoginRateLimitAllowedPerMin,
		s.trustedProxies,
		s.metricsManager,
	).SetupRoutes(r)

	// all the rest - unhandled paths
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteMessage(w, http.StatusNotFound, "Not found")
	})

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest(s.trustedProxies))
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.DrainAndCloseRequest())

	routeGate := middleware.NewRouteGate(s.guard, s.metricsManager)
	cors := middleware.Cors(s.config.AllowedOrigins)

	return cors(routeGate.Handler()(r))
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:           s.routerSetup(),
		Addr:              ipAndPort,
		WriteTimeout:      time.Minute,
		ReadTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		ConnState:         s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
