package posts

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrSlugTaken = errors.New("post slug already taken")
)

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   *string   `json:"excerpt"`
	Body      string    `json:"body"`
	ImageURL  *string   `json:"imageUrl"`
	Tags      []string  `json:"tags"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
