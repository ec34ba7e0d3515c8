package collaborations

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/crossfield/internal/telemetry/metrics"
	"github.com/2beens/crossfield/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ListResponse struct {
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Data     []*Collaboration `json:"data"`
}

type StatusResponse struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

type newCollaborationRequest struct {
	Type         Type    `json:"type" validate:"required,oneof=RESEARCH OPEN_SOURCE_PROJECT STARTUP_COFOUNDER"`
	Title        string  `json:"title" validate:"min=3,max=120"`
	FullName     string  `json:"fullName" validate:"min=2,max=120"`
	Organization *string `json:"organization" validate:"omitnil,max=120"`
	Description  string  `json:"description" validate:"min=30,max=2000"`
	Link         *string `json:"link" validate:"omitnil,url"`
}

type updateCollaborationRequest struct {
	Status       *Status `json:"status" validate:"omitnil,oneof=PENDING APPROVED REJECTED"`
	Title        *string `json:"title" validate:"omitnil,min=3,max=120"`
	Description  *string `json:"description" validate:"omitnil,min=30,max=2000"`
	Organization *string `json:"organization" validate:"omitnil,max=120"`
	Link         *string `json:"link" validate:"omitnil,url"`
}

type collaborationsRepo interface {
	Add(ctx context.Context, c *Collaboration) error
	List(ctx context.Context, filter ListFilter) ([]*Collaboration, int, error)
	All(ctx context.Context) ([]*Collaboration, error)
	Update(ctx context.Context, id string, patch Patch) (*Collaboration, error)
	Delete(ctx context.Context, id string) error
}

type adminGuard interface {
	Authorized(r *http.Request) bool
	AdminOnly(next http.HandlerFunc) http.HandlerFunc
}

type Handler struct {
	repo           collaborationsRepo
	guard          adminGuard
	sanitizer      *Sanitizer
	metricsManager *metrics.Manager
}

func NewHandler(
	repo collaborationsRepo,
	guard adminGuard,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		guard:          guard,
		sanitizer:      NewSanitizer(),
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/collaborations", handler.handleList).Methods("GET", "OPTIONS").Name("list-collaborations")
	router.HandleFunc("/api/collaborations", handler.handleNew).Methods("POST", "OPTIONS").Name("new-collaboration")
	router.HandleFunc("/api/admin/collaborations/{id}", handler.guard.AdminOnly(handler.handleUpdate)).Methods("PATCH", "OPTIONS").Name("update-collaboration")
	router.HandleFunc("/api/admin/collaborations/{id}", handler.guard.AdminOnly(handler.handleDelete)).Methods("DELETE", "OPTIONS").Name("delete-collaboration")
}

// handleList serves visitors only approved requests, the admin may filter by any status.
func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := ListFilter{
		Page:  pkg.PageParam(r),
		Query: strings.TrimSpace(query.Get("q")),
		Types: parseTypes(query.Get("type")),
	}

	if handler.guard.Authorized(r) {
		if status := Status(query.Get("status")); status.Valid() {
			filter.Status = status
		}
	} else {
		filter.Status = StatusApproved
	}

	collaborations, total, err := handler.repo.List(r.Context(), filter)
	if err != nil {
		log.Errorf("list collaborations: %s", err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to load collaborations")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, ListResponse{
		Total:    total,
		Page:     filter.Page,
		PageSize: PageSize,
		Data:     collaborations,
	})
}

func (handler *Handler) handleNew(w http.ResponseWriter, r *http.Request) {
	var req newCollaborationRequest
	if err := pkg.ReadJSONBody(w, r, &req); err != nil {
		log.Tracef("new collaboration, read body: %s", err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = handler.sanitizer.Text(req.Title)
	req.FullName = handler.sanitizer.Text(req.FullName)
	req.Description = handler.sanitizer.Text(req.Description)
	req.Organization = handler.sanitizer.OptionalText(req.Organization)

	if err := pkg.Validate(req); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	c := &Collaboration{
		Type:         req.Type,
		Title:        req.Title,
		FullName:     req.FullName,
		Organization: req.Organization,
		Description:  req.Description,
		Link:         req.Link,
		Status:       StatusPending,
	}
	if err := handler.repo.Add(r.Context(), c); err != nil {
		log.Errorf("add collaboration: %s", err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to submit")
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterSubmissions.WithLabelValues("collaboration").Inc()
	}
	log.Tracef("new collaboration %s [%s] submitted", c.ID, c.Title)

	pkg.WriteJSON(w, http.StatusCreated, c)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateCollaborationRequest
	if err := pkg.ReadJSONBody(w, r, &req); err != nil {
		log.Tracef("update collaboration %s, read body: %s", id, err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := pkg.Validate(req); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := handler.repo.Update(r.Context(), id, Patch{
		Status:       req.Status,
		Title:        req.Title,
		Description:  req.Description,
		Organization: req.Organization,
		Link:         req.Link,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			pkg.WriteMessage(w, http.StatusNotFound, "Not found")
			return
		}
		log.Errorf("update collaboration %s: %s", id, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to update")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, StatusResponse{
		ID:     updated.ID,
		Status: updated.Status,
	})
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := handler.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			pkg.WriteMessage(w, http.StatusNotFound, "Not found")
			return
		}
		log.Errorf("delete collaboration %s: %s", id, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to delete")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "deleted")
}

func parseTypes(raw string) []Type {
	var types []Type
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, Type(t))
		}
	}
	return types
}
