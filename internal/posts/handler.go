package posts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/crossfield/internal/cache"
	"github.com/2beens/crossfield/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const slugTakenMessage = "Slug already exists. Choose another."

type newPostRequest struct {
	Title     string   `json:"title" validate:"min=3,max=160"`
	Slug      *string  `json:"slug" validate:"omitnil,max=160"`
	Excerpt   *string  `json:"excerpt" validate:"omitnil,max=300"`
	Body      string   `json:"body" validate:"min=10"`
	ImageURL  *string  `json:"imageUrl" validate:"omitnil,url"`
	Tags      []string `json:"tags"`
	Published *bool    `json:"published"`
}

type updatePostRequest struct {
	Title     *string              `json:"title" validate:"omitnil,min=3,max=160"`
	Slug      *string              `json:"slug" validate:"omitnil,max=160"`
	Excerpt   pkg.Nullable[string] `json:"excerpt" validate:"omitempty,max=300"`
	Body      *string              `json:"body" validate:"omitnil,min=10"`
	ImageURL  pkg.Nullable[string] `json:"imageUrl" validate:"omitempty,url"`
	Tags      *[]string            `json:"tags"`
	Published *bool                `json:"published"`
}

type postsRepo interface {
	Add(ctx context.Context, post *Post) error
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*Post, error)
	ListPublished(ctx context.Context) ([]*Post, error)
	All(ctx context.Context) ([]*Post, error)
}

type adminGuard interface {
	AdminOnly(next http.HandlerFunc) http.HandlerFunc
}

type Handler struct {
	repo      postsRepo
	guard     adminGuard
	slugCache cache.Cache
}

func NewHandler(repo postsRepo, guard adminGuard, slugCache cache.Cache) *Handler {
	return &Handler{
		repo:      repo,
		guard:     guard,
		slugCache: slugCache,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/posts", handler.handleList).Methods("GET", "OPTIONS").Name("list-posts")
	router.HandleFunc("/api/posts/{slug}", handler.handleGetBySlug).Methods("GET", "OPTIONS").Name("get-post")
	router.HandleFunc("/api/admin/posts", handler.guard.AdminOnly(handler.handleNew)).Methods("POST", "OPTIONS").Name("new-post")
	router.HandleFunc("/api/admin/posts/{id}", handler.guard.AdminOnly(handler.handleUpdate)).Methods("PATCH", "OPTIONS").Name("update-post")
	router.HandleFunc("/api/admin/posts/{id}", handler.guard.AdminOnly(handler.handleDelete)).Methods("DELETE", "OPTIONS").Name("delete-post")
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	posts, err := handler.repo.ListPublished(r.Context())
	if err != nil {
		log.Errorf("list published posts: %s", err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to load posts")
		return
	}
	pkg.WriteJSON(w, http.StatusOK, posts)
}

func (handler *Handler) handleGetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	cacheKey := "post:" + slug

	if cached, found := handler.slugCache.Get(cacheKey); found {
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	}

	post, err := handler.repo.GetPublishedBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			pkg.WriteMessage(w, http.StatusNotFound, "Not found")
			return
		}
		log.Errorf("get post by slug %s: %s", slug, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to load post")
		return
	}

	postJson, err := json.Marshal(post)
	if err != nil {
		log.Errorf("marshal post %s: %s", post.ID, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to load post")
		return
	}
	handler.slugCache.Set(cacheKey, postJson)

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, postJson)
}

func (handler *Handler) handleNew(w http.ResponseWriter, r *http.Request) {
	var req newPostRequest
	if err := pkg.ReadJSONBody(w, r, &req); err != nil {
		log.Tracef("new post, read body: %s", err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := pkg.Validate(req); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	slugSource := req.Title
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		slugSource = *req.Slug
	}
	post := &Post{
		Title:     req.Title,
		Slug:      pkg.Slugify(slugSource),
		Excerpt:   req.Excerpt,
		Body:      req.Body,
		ImageURL:  req.ImageURL,
		Tags:      req.Tags,
		Published: req.Published == nil || *req.Published,
	}
	if post.Slug == "" {
		pkg.WriteMessage(w, http.StatusBadRequest, "slug must contain letters or digits")
		return
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	if err := handler.repo.Add(r.Context(), post); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			pkg.WriteMessage(w, http.StatusConflict, slugTakenMessage)
			return
		}
		log.Errorf("add post [%s]: %s", post.Slug, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Unable to save")
		return
	}
	handler.slugCache.Clear()

	log.Tracef("new post %s [%s] added", post.ID, post.Slug)
	pkg.WriteJSON(w, http.StatusCreated, post)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updatePostRequest
	if err := pkg.ReadJSONBody(w, r, &req); err != nil {
		log.Tracef("update post %s, read body: %s", id, err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := pkg.Validate(req); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := handler.repo.Get(r.Context(), id)
	if err != nil {
		handler.writeRepoError(w, "get post "+id, err, "Unable to update")
		return
	}

	applyPatch(post, req)
	if post.Slug == "" {
		pkg.WriteMessage(w, http.StatusBadRequest, "slug must contain letters or digits")
		return
	}

	if err := handler.repo.Update(r.Context(), post); err != nil {
		handler.writeRepoError(w, "update post "+id, err, "Unable to update")
		return
	}
	handler.slugCache.Clear()

	pkg.WriteJSON(w, http.StatusOK, post)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := handler.repo.Delete(r.Context(), id); err != nil {
		handler.writeRepoError(w, "delete post "+id, err, "Unable to delete")
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

// applyPatch changes only the fields present in the request. A new slug is
// derived whenever slug or title is sent: from the slug if given, else the title.
func applyPatch(post *Post, req updatePostRequest) {
	if req.Title != nil && *req.Title != "" {
		post.Title = *req.Title
	}
	if req.Body != nil && *req.Body != "" {
		post.Body = *req.Body
	}
	if req.Excerpt.Set {
		post.Excerpt = req.Excerpt.Value
	}
	if req.ImageURL.Set {
		post.ImageURL = req.ImageURL.Value
	}
	if req.Tags != nil {
		post.Tags = *req.Tags
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	hasSlug := req.Slug != nil && strings.TrimSpace(*req.Slug) != ""
	hasTitle := req.Title != nil && *req.Title != ""
	switch {
	case hasSlug:
		post.Slug = pkg.Slugify(*req.Slug)
	case hasTitle:
		post.Slug = pkg.Slugify(post.Title)
	}
}
