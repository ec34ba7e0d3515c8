package news

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("news item not found")
	ErrSlugTaken = errors.New("news slug already taken")
)

type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     *string   `json:"summary"`
	Body        string    `json:"body"`
	PublishedAt time.Time `json:"publishedAt"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
