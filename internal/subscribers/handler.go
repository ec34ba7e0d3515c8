package subscribers

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/crossfield/internal/telemetry/metrics"
	"github.com/2beens/crossfield/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	alreadySubscribedMessage = "You're already subscribed."
	exportFileName           = "crossfield-subscribers.csv"
)

type subscribeRequest struct {
	Email string `json:"email" validate:"required,max=254,email"`
}

type subscribersRepo interface {
	Exists(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, email string) (*Subscriber, error)
	All(ctx context.Context) ([]*Subscriber, error)
}

type adminGuard interface {
	AdminOnly(next http.HandlerFunc) http.HandlerFunc
}

type Handler struct {
	repo           subscribersRepo
	guard          adminGuard
	metricsManager *metrics.Manager
}

func NewHandler(repo subscribersRepo, guard adminGuard, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		guard:          guard,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/subscribers", handler.handleSubscribe).Methods("POST", "OPTIONS").Name("subscribe")
	router.HandleFunc("/api/admin/subscribers/export", handler.guard.AdminOnly(handler.handleExport)).Methods("GET", "OPTIONS").Name("export-subscribers")
}

func (handler *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := pkg.ReadJSONBody(w, r, &req); err != nil {
		log.Tracef("subscribe, read body: %s", err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := pkg.Validate(req); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	exists, err := handler.repo.Exists(r.Context(), req.Email)
	if err != nil {
		log.Errorf("check subscriber: %s", err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to subscribe")
		return
	}
	if exists {
		pkg.WriteMessage(w, http.StatusOK, alreadySubscribedMessage)
		return
	}

	// a concurrent subscribe with the same email loses on the unique index
	subscriber, err := handler.repo.Add(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrAlreadySubscribed) {
			pkg.WriteMessage(w, http.StatusOK, alreadySubscribedMessage)
			return
		}
		log.Errorf("add subscriber: %s", err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to subscribe")
		return
	}
	handler.metricsManager.CounterSubmissions.WithLabelValues("subscriber").Inc()

	log.Debugf("new subscriber %s", subscriber.ID)
	pkg.WriteMessage(w, http.StatusOK, "Subscribed")
}

func (handler *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	subscribers, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("export subscribers: %s", err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to export")
		return
	}

	csvBytes, err := subscribersCSV(subscribers)
	if err != nil {
		log.Errorf("export subscribers, write csv: %s", err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to export")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName+`"`)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.CSV, csvBytes)
}

func subscribersCSV(subscribers []*Subscriber) ([]byte, error) {
	var buf bytes.Buffer
	csvWriter := csv.NewWriter(&buf)
	if err := csvWriter.Write([]string{"email", "created_at"}); err != nil {
		return nil, err
	}
	for _, s := range subscribers {
		if err := csvWriter.Write([]string{s.Email, s.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			return nil, err
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
