package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/2beens/crossfield/internal/telemetry/metrics"
	"github.com/2beens/crossfield/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("http: panic serving %s %s: %v\n%s", req.Method, req.URL.Path, r, debug.Stack())
					if metricsManager != nil {
						metricsManager.CounterHandleRequestPanic.Inc()
					}
					span := trace.SpanFromContext(req.Context())
					span.RecordError(fmt.Errorf("panic: %v", r), trace.WithStackTrace(true))
					span.SetStatus(codes.Error, "panic")
					pkg.WriteMessage(respWriter, http.StatusInternalServerError, "Internal error")
				}
			}()

			// handler call
			next.ServeHTTP(respWriter, req)
		})
	}
}
