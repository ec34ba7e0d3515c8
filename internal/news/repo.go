package news

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

const columns = `id, title, slug, summary, body, published_at, published, created_at, updated_at`

var _ newsRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, item *Item) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "newsRepo.Add")
	defer span.End()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.PublishedAt.IsZero() {
		item.PublishedAt = now
	}
	item.UpdatedAt = item.CreatedAt

	_, err := r.db.Exec(
		ctx,
		`INSERT INTO news (`+columns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.Title, item.Slug, item.Summary, item.Body,
		item.PublishedAt, item.Published, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("insert news: %w", err)
	}

	return nil
}

func (r *Repo) Update(ctx context.Context, item *Item) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "newsRepo.Update")
	span.SetAttributes(attribute.String("id", item.ID))
	defer span.End()

	item.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(
		ctx,
		`UPDATE news
		SET title = $1, slug = $2, summary = $3, body = $4, published_at = $5, published = $6, updated_at = $7
		WHERE id = $8`,
		item.Title, item.Slug, item.Summary, item.Body,
		item.PublishedAt, item.Published, item.UpdatedAt, item.ID,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("update news %s: %w", item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Item, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "newsRepo.Get")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	return r.getOne(ctx, `SELECT `+columns+` FROM news WHERE id = $1`, id)
}

func (r *Repo) GetPublishedBySlug(ctx context.Context, slug string) (*Item, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "newsRepo.GetPublishedBySlug")
	span.SetAttributes(attribute.String("slug", slug))
	defer span.End()

	return r.getOne(ctx, `SELECT `+columns+` FROM news WHERE slug = $1 AND published`, slug)
}

func (r *Repo) ListPublished(ctx context.Context) ([]*Item, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "newsRepo.ListPublished")
	defer span.End()

	return r.getMany(ctx, `SELECT `+columns+` FROM news WHERE published ORDER BY published_at DESC`)
}

func (r *Repo) All(ctx context.Context) ([]*Item, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "newsRepo.All")
	defer span.End()

	return r.getMany(ctx, `SELECT `+columns+` FROM news ORDER BY published_at DESC`)
}

func (r *Repo) getOne(ctx context.Context, query string, args ...any) (*Item, error) {
	item, err := scanItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get news: %w", err)
	}
	return item, nil
}

func (r *Repo) getMany(ctx context.Context, query string, args ...any) ([]*Item, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var item Item
	if err := row.Scan(
		&item.ID, &item.Title, &item.Slug, &item.Summary, &item.Body,
		&item.PublishedAt, &item.Published, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
