package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/crossfield/internal/telemetry/tracing"
	"github.com/2beens/crossfield/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const columns = `id, title, slug, excerpt, body, image_url, tags, published, created_at, updated_at`

var _ postsRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, post *Post) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Add")
	defer span.End()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.UpdatedAt = post.CreatedAt
	if post.Tags == nil {
		post.Tags = []string{}
	}

	_, err := r.db.Exec(
		ctx,
		`INSERT INTO post (`+columns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		post.ID, post.Title, post.Slug, post.Excerpt, post.Body, post.ImageURL,
		post.Tags, post.Published, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// Update writes all editable fields of post, created_at is kept.
func (r *Repo) Update(ctx context.Context, post *Post) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Update")
	span.SetAttributes(attribute.String("id", post.ID))
	defer span.End()

	post.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(
		ctx,
		`UPDATE post
		SET title = $1, slug = $2, excerpt = $3, body = $4, image_url = $5, tags = $6, published = $7, updated_at = $8
		WHERE id = $9`,
		post.Title, post.Slug, post.Excerpt, post.Body, post.ImageURL,
		post.Tags, post.Published, post.UpdatedAt, post.ID,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("update post %s: %w", post.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM post WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Get")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	return r.getOne(ctx, `SELECT `+columns+` FROM post WHERE id = $1`, id)
}

func (r *Repo) GetPublishedBySlug(ctx context.Context, slug string) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.GetPublishedBySlug")
	span.SetAttributes(attribute.String("slug", slug))
	defer span.End()

	return r.getOne(ctx, `SELECT `+columns+` FROM post WHERE slug = $1 AND published`, slug)
}

func (r *Repo) ListPublished(ctx context.Context) ([]*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.ListPublished")
	defer span.End()

	return r.getMany(ctx, `SELECT `+columns+` FROM post WHERE published ORDER BY created_at DESC`)
}

// All includes drafts, most recently edited first.
func (r *Repo) All(ctx context.Context) ([]*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.All")
	defer span.End()

	return r.getMany(ctx, `SELECT `+columns+` FROM post ORDER BY updated_at DESC`)
}

func (r *Repo) getOne(ctx context.Context, query string, args ...any) (*Post, error) {
	post, err := scanPost(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

func (r *Repo) getMany(ctx context.Context, query string, args ...any) ([]*Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []*Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	if err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Body, &p.ImageURL,
		&p.Tags, &p.Published, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
