package collaborations

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ collaborationsRepo = (*repoMock)(nil)

type repoMock struct {
	Collaborations map[string]*Collaboration
	mutex          sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Collaborations: make(map[string]*Collaboration),
	}
}

func (r *repoMock) Add(_ context.Context, c *Collaboration) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = c.CreatedAt
	if c.Status == "" {
		c.Status = StatusPending
	}
	r.Collaborations[c.ID] = c
	return nil
}

func (r *repoMock) List(_ context.Context, filter ListFilter) ([]*Collaboration, int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	query := strings.ToLower(filter.Query)
	var matching []*Collaboration
	for _, c := range r.Collaborations {
		if query != "" &&
			!strings.Contains(strings.ToLower(c.Title), query) &&
			!strings.Contains(strings.ToLower(c.Description), query) {
			continue
		}
		if len(filter.Types) > 0 && !slices.Contains(filter.Types, c.Type) {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		matching = append(matching, c)
	}

	sortNewestFirst(matching)

	start := filter.offset()
	if start >= len(matching) {
		return []*Collaboration{}, len(matching), nil
	}
	end := min(start+PageSize, len(matching))
	return matching[start:end], len(matching), nil
}

func (r *repoMock) All(_ context.Context) ([]*Collaboration, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := make([]*Collaboration, 0, len(r.Collaborations))
	for _, c := range r.Collaborations {
		all = append(all, c)
	}
	sortNewestFirst(all)
	return all, nil
}

func (r *repoMock) Update(_ context.Context, id string, patch Patch) (*Collaboration, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	c, ok := r.Collaborations[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Organization != nil {
		c.Organization = patch.Organization
	}
	if patch.Link != nil {
		c.Link = patch.Link
	}
	c.UpdatedAt = time.Now()
	return c, nil
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Collaborations[id]; !ok {
		return ErrNotFound
	}
	delete(r.Collaborations, id)
	return nil
}

func sortNewestFirst(collaborations []*Collaboration) {
	sort.Slice(collaborations, func(i, j int) bool {
		return collaborations[i].CreatedAt.After(collaborations[j].CreatedAt)
	})
}
