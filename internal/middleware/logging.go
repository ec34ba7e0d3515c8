package middleware

import (
	"net/http"
	"time"

	"github.com/2beens/crossfield/pkg"

	log "github.com/sirupsen/logrus"
)

func LogRequest(trustedProxies pkg.TrustedProxies) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			resp := &responseWriter{w, http.StatusOK}

			next.ServeHTTP(resp, r)

			log.WithFields(log.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   resp.statusCode,
				"duration": time.Since(start).String(),
				"ip":       clientIP(r, trustedProxies),
				"ua":       r.Header.Get("User-Agent"),
			}).Trace(" ====> request")
		})
	}
}

// clientIP is the request IP for logs and limiter keys, "unknown" when it can't be read.
func clientIP(r *http.Request, trustedProxies pkg.TrustedProxies) string {
	ip, err := pkg.ReadUserIP(r, trustedProxies)
	if err != nil {
		return "unknown"
	}
	return ip
}
