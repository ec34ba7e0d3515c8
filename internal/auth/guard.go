package auth

import (
	"context"
	"net/http"

	"github.com/2beens/crossfield/internal/telemetry/tracing"
	"github.com/2beens/crossfield/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type Checker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
}

// Guard is the one "is this request made by the admin" check, shared by the
// route gate and by every mutating admin handler.
type Guard struct {
	checker Checker
}

func NewGuard(checker Checker) *Guard {
	return &Guard{
		checker: checker,
	}
}

func (g *Guard) Authorized(r *http.Request) bool {
	token := TokenFromRequest(r)
	if token == "" {
		return false
	}

	isLogged, err := g.checker.IsLogged(r.Context(), token)
	if err != nil {
		log.Errorf("[auth guard] session check failed => %s: %s", r.URL.Path, err)
		return false
	}

	return isLogged
}

// AdminOnly rejects the request with 401 unless it carries a valid admin session.
func (g *Guard) AdminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracing.GlobalTracer.Start(r.Context(), "auth.adminOnly")
		if !g.Authorized(r) {
			log.Tracef("[auth guard] unauthorized => %s %s", r.Method, r.URL.Path)
			span.SetStatus(codes.Error, "not-logged")
			span.End()
			pkg.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		span.SetStatus(codes.Ok, "ok")
		span.End()

		next(w, r)
	}
}
