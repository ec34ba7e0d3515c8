package news

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ newsRepo = (*repoMock)(nil)

type repoMock struct {
	Items map[string]*Item
	mutex sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Items: make(map[string]*Item),
	}
}

func (r *repoMock) slugTaken(slug, exceptID string) bool {
	for id, item := range r.Items {
		if item.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func (r *repoMock) Add(_ context.Context, item *Item) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.slugTaken(item.Slug, "") {
		return ErrSlugTaken
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.PublishedAt.IsZero() {
		item.PublishedAt = now
	}
	item.UpdatedAt = item.CreatedAt

	stored := *item
	r.Items[item.ID] = &stored
	return nil
}

func (r *repoMock) Update(_ context.Context, item *Item) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Items[item.ID]; !ok {
		return ErrNotFound
	}
	if r.slugTaken(item.Slug, item.ID) {
		return ErrSlugTaken
	}
	item.UpdatedAt = time.Now()
	stored := *item
	r.Items[item.ID] = &stored
	return nil
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Items[id]; !ok {
		return ErrNotFound
	}
	delete(r.Items, id)
	return nil
}

func (r *repoMock) Get(_ context.Context, id string) (*Item, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	item, ok := r.Items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *repoMock) GetPublishedBySlug(_ context.Context, slug string) (*Item, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, item := range r.Items {
		if item.Slug == slug && item.Published {
			cp := *item
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *repoMock) ListPublished(_ context.Context) ([]*Item, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	items := []*Item{}
	for _, item := range r.Items {
		if item.Published {
			items = append(items, item)
		}
	}
	sortByPublishedAt(items)
	return items, nil
}

func (r *repoMock) All(_ context.Context) ([]*Item, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	items := make([]*Item, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, item)
	}
	sortByPublishedAt(items)
	return items, nil
}

func sortByPublishedAt(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}
