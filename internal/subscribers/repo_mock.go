package subscribers

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ subscribersRepo = (*repoMock)(nil)

var errMockFailure = errors.New("mock failure")

type repoMock struct {
	Subscribers map[string]*Subscriber
	// Fail makes every call return an error.
	Fail  bool
	mutex sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Subscribers: make(map[string]*Subscriber),
	}
}

func (r *repoMock) Exists(_ context.Context, email string) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Fail {
		return false, errMockFailure
	}
	_, ok := r.Subscribers[email]
	return ok, nil
}

func (r *repoMock) Add(_ context.Context, email string) (*Subscriber, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Fail {
		return nil, errMockFailure
	}
	if _, ok := r.Subscribers[email]; ok {
		return nil, ErrAlreadySubscribed
	}
	s := &Subscriber{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	r.Subscribers[email] = s
	return s, nil
}

func (r *repoMock) All(_ context.Context) ([]*Subscriber, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Fail {
		return nil, errMockFailure
	}
	subscribers := make([]*Subscriber, 0, len(r.Subscribers))
	for _, s := range r.Subscribers {
		subscribers = append(subscribers, s)
	}
	sort.Slice(subscribers, func(i, j int) bool {
		return subscribers[i].CreatedAt.After(subscribers[j].CreatedAt)
	})
	return subscribers, nil
}
