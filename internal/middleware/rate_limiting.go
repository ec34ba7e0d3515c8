package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/2beens/crossfield/internal/telemetry/metrics"
	"github.com/2beens/crossfield/pkg"

	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit limits requests per client IP, under the given limiter key prefix.
// Forwarding headers only count when sent by one of the trusted proxies.
func RateLimit(
	rateLimiter RequestRateLimiter,
	metricsManager *metrics.Manager,
	keyPrefix string,
	allowedPerMin int,
	trustedProxies pkg.TrustedProxies,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("%s:%s", keyPrefix, clientIP(r, trustedProxies))
			res, err := rateLimiter.Allow(
				r.Context(),
				key,
				redis_rate.PerMinute(allowedPerMin),
			)
			if err != nil {
				log.Errorf("[rate limit] %s: %s", key, err)
				pkg.WriteMessage(w, http.StatusInternalServerError, "Rate limit internal error")
				return
			}

			if res.Allowed > 0 {
				next.ServeHTTP(w, r)
				return
			}

			if metricsManager != nil {
				metricsManager.CounterRateLimitedRequests.Inc()
			}
			log.Warnf("[rate limit] too many requests: %s", key)

			retryAfter := int(res.RetryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			pkg.WriteMessage(
				w,
				http.StatusTooManyRequests,
				fmt.Sprintf("Too many requests, retry after %d seconds", retryAfter),
			)
		})
	}
}
