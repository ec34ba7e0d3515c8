package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/crossfield/internal"
	"github.com/2beens/crossfield/internal/auth"
	"github.com/2beens/crossfield/internal/config"
	"github.com/2beens/crossfield/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "crossfield-backend",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	// missing admin config is not fatal, the public site keeps working and logins answer 500
	adminUsername := os.Getenv("CROSSFIELD_ADMIN_USERNAME")
	adminPasswordHash := os.Getenv("CROSSFIELD_ADMIN_PASSWORD_HASH")
	if adminUsername == "" || adminPasswordHash == "" {
		log.Errorf("admin username and password not set. use CROSSFIELD_ADMIN_USERNAME and CROSSFIELD_ADMIN_PASSWORD_HASH")
	}

	signingSecret := os.Getenv("CROSSFIELD_JWT_SECRET")
	if signingSecret == "" {
		log.Errorf("session signing secret not set. use CROSSFIELD_JWT_SECRET")
	}

	sameSite, err := auth.ParseSameSite(cfg.CookieSameSite)
	if err != nil {
		log.Fatalf("admin cookie config: %s", err)
	}

	redisPassword := os.Getenv("CROSSFIELD_REDIS_PASS")
	if redisPassword == "" {
		log.Errorf("redis password not set. use CROSSFIELD_REDIS_PASS")
	}

	if otelServiceName := os.Getenv("OTEL_SERVICE_NAME"); otelServiceName == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:        cfg,
			DBPassword:    os.Getenv("CROSSFIELD_DB_PASSWORD"),
			RedisPassword: redisPassword,
			Auth: auth.Config{
				Admin: auth.Admin{
					Username:     adminUsername,
					PasswordHash: adminPasswordHash,
				},
				SigningSecret: signingSecret,
				TTL:           auth.DefaultTTL,
				SameSite:      sameSite,
			},
			HoneycombTracingEnabled: honeycombEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}
