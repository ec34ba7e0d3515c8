package posts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ postsRepo = (*repoMock)(nil)

type repoMock struct {
	Posts map[string]*Post
	mutex sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Posts: make(map[string]*Post),
	}
}

func (r *repoMock) slugTaken(slug, exceptID string) bool {
	for id, p := range r.Posts {
		if p.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func (r *repoMock) Add(_ context.Context, post *Post) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.slugTaken(post.Slug, "") {
		return ErrSlugTaken
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.UpdatedAt = post.CreatedAt
	if post.Tags == nil {
		post.Tags = []string{}
	}

	stored := *post
	r.Posts[post.ID] = &stored
	return nil
}

func (r *repoMock) Update(_ context.Context, post *Post) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Posts[post.ID]; !ok {
		return ErrNotFound
	}
	if r.slugTaken(post.Slug, post.ID) {
		return ErrSlugTaken
	}
	post.UpdatedAt = time.Now()
	stored := *post
	r.Posts[post.ID] = &stored
	return nil
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.Posts, id)
	return nil
}

func (r *repoMock) Get(_ context.Context, id string) (*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	p, ok := r.Posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *repoMock) GetPublishedBySlug(_ context.Context, slug string) (*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, p := range r.Posts {
		if p.Slug == slug && p.Published {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *repoMock) ListPublished(_ context.Context) ([]*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	posts := []*Post{}
	for _, p := range r.Posts {
		if p.Published {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (r *repoMock) All(_ context.Context) ([]*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	posts := make([]*Post, 0, len(r.Posts))
	for _, p := range r.Posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].UpdatedAt.After(posts[j].UpdatedAt)
	})
	return posts, nil
}
