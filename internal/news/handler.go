package news

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/crossfield/internal/cache"
	"github.com/2beens/crossfield/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const slugTakenMessage = "Slug already exists. Choose another."

var errInvalidPublishedAt = errors.New("publishedAt must be an RFC3339 date")

type newItemRequest struct {
	Title       string  `json:"title" validate:"min=3,max=160"`
	Summary     *string `json:"summary" validate:"omitnil,max=300"`
	Body        string  `json:"body" validate:"min=10"`
	PublishedAt *string `json:"publishedAt" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	Published   *bool   `json:"published"`
}

type updateItemRequest struct {
	Title       *string              `json:"title" validate:"omitnil,min=3,max=160"`
	Summary     pkg.Nullable[string] `json:"summary" validate:"omitempty,max=300"`
	Body        *string              `json:"body" validate:"omitnil,min=10"`
	PublishedAt *string              `json:"publishedAt" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	Published   *bool                `json:"published"`
}

type newsRepo interface {
	Add(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Item, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*Item, error)
	ListPublished(ctx context.Context) ([]*Item, error)
	All(ctx context.Context) ([]*Item, error)
}

type adminGuard interface {
	AdminOnly(next http.HandlerFunc) http.HandlerFunc
}

type Handler struct {
	repo      newsRepo
	guard     adminGuard
	slugCache cache.Cache
}

func NewHandler(repo newsRepo, guard adminGuard, slugCache cache.Cache) *Handler {
	return &Handler{
		repo:      repo,
		guard:     guard,
		slugCache: slugCache,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/news", handler.handleList).Methods("GET", "OPTIONS").Name("list-news")
	router.HandleFunc("/api/news/{slug}", handler.handleGetBySlug).Methods("GET", "OPTIONS").Name("get-news")
	router.HandleFunc("/api/admin/news", handler.guard.AdminOnly(handler.handleNew)).Methods("POST", "OPTIONS").Name("new-news")
	router.HandleFunc("/api/admin/news/{id}", handler.guard.AdminOnly(handler.handleUpdate)).Methods("PATCH", "OPTIONS").Name("update-news")
	router.HandleFunc("/api/admin/news/{id}", handler.guard.AdminOnly(handler.handleDelete)).Methods("DELETE", "OPTIONS").Name("delete-news")
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := handler.repo.ListPublished(r.Context())
	if err != nil {
		log.Errorf("list published news: %s", err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to load news")
		return
	}
	pkg.WriteJSON(w, http.StatusOK, items)
}

func (handler *Handler) handleGetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	cacheKey := "news:" + slug

	if cached, found := handler.slugCache.Get(cacheKey); found {
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	}

	item, err := handler.repo.GetPublishedBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			pkg.WriteMessage(w, http.StatusNotFound, "Not found")
			return
		}
		log.Errorf("get news by slug %s: %s", slug, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to load news")
		return
	}

	itemJson, err := json.Marshal(item)
	if err != nil {
		log.Errorf("marshal news %s: %s", item.ID, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to load news")
		return
	}
	handler.slugCache.Set(cacheKey, itemJson)

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, itemJson)
}

func (handler *Handler) handleNew(w http.ResponseWriter, r *http.Request) {
	var req newItemRequest
	if err := pkg.ReadJSONBody(w, r, &req); err != nil {
		log.Tracef("new news, read body: %s", err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := pkg.Validate(req); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	item := &Item{
		Title:     req.Title,
		Slug:      pkg.Slugify(req.Title),
		Summary:   req.Summary,
		Body:      req.Body,
		Published: req.Published == nil || *req.Published,
	}
	if item.Slug == "" {
		pkg.WriteMessage(w, http.StatusBadRequest, "slug must contain letters or digits")
		return
	}
	if req.PublishedAt != nil {
		publishedAt, err := parsePublishedAt(*req.PublishedAt)
		if err != nil {
			pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		item.PublishedAt = publishedAt
	} else {
		item.PublishedAt = time.Now().UTC()
	}

	if err := handler.repo.Add(r.Context(), item); err != nil {
		handler.writeRepoError(w, "add news ["+item.Slug+"]", err, "Unable to save")
		return
	}
	handler.slugCache.Clear()

	log.Tracef("news %s [%s] added", item.ID, item.Slug)
	pkg.WriteJSON(w, http.StatusCreated, item)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateItemRequest
	if err := pkg.ReadJSONBody(w, r, &req); err != nil {
		log.Tracef("update news %s, read body: %s", id, err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := pkg.Validate(req); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := handler.repo.Get(r.Context(), id)
	if err != nil {
		handler.writeRepoError(w, "get news "+id, err, "Unable to update")
		return
	}

	if err := applyPatch(item, req); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if item.Slug == "" {
		pkg.WriteMessage(w, http.StatusBadRequest, "slug must contain letters or digits")
		return
	}

	if err := handler.repo.Update(r.Context(), item); err != nil {
		handler.writeRepoError(w, "update news "+id, err, "Unable to update")
		return
	}
	handler.slugCache.Clear()

	pkg.WriteJSON(w, http.StatusOK, item)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := handler.repo.Delete(r.Context(), id); err != nil {
		handler.writeRepoError(w, "delete news "+id, err, "Unable to delete")
		return
	}
	handler.slugCache.Clear()

	pkg.WriteMessage(w, http.StatusOK, "deleted")
}

func (handler *Handler) writeRepoError(w http.ResponseWriter, op string, err error, internalMessage string) {
	switch {
	case errors.Is(err, ErrNotFound):
		pkg.WriteMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrSlugTaken):
		pkg.WriteMessage(w, http.StatusConflict, slugTakenMessage)
	default:
		log.Errorf("%s: %s", op, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, internalMessage)
	}
}

// applyPatch expects a validated request. The slug follows the title.
// The item is left untouched when publishedAt can't be parsed.
func applyPatch(item *Item, req updateItemRequest) error {
	var publishedAt *time.Time
	if req.PublishedAt != nil {
		parsed, err := parsePublishedAt(*req.PublishedAt)
		if err != nil {
			return err
		}
		publishedAt = &parsed
	}

	if req.Title != nil && *req.Title != "" {
		item.Title = *req.Title
		item.Slug = pkg.Slugify(item.Title)
	}
	if req.Body != nil && *req.Body != "" {
		item.Body = *req.Body
	}
	if req.Summary.Set {
		item.Summary = req.Summary.Value
	}
	if publishedAt != nil {
		item.PublishedAt = *publishedAt
	}
	if req.Published != nil {
		item.Published = *req.Published
	}
	return nil
}

func parsePublishedAt(raw string) (time.Time, error) {
	publishedAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errInvalidPublishedAt
	}
	return publishedAt, nil
}
