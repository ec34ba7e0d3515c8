package collaborations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/crossfield/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const columns = `id, type, title, full_name, organization, description, link, status, created_at, updated_at`

var _ collaborationsRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, c *Collaboration) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "collaborationsRepo.Add")
	defer span.End()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt
	if c.Status == "" {
		c.Status = StatusPending
	}

	_, err := r.db.Exec(
		ctx,
		`INSERT INTO collaboration (`+columns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Type, c.Title, c.FullName, c.Organization, c.Description, c.Link, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert collaboration: %w", err)
	}

	return nil
}

// List returns one page of collaborations matching the filter, newest first,
// together with the total number of matches.
func (r *Repo) List(ctx context.Context, filter ListFilter) ([]*Collaboration, int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "collaborationsRepo.List")
	span.SetAttributes(attribute.Int("page", filter.Page))
	defer span.End()

	where, args := filter.whereClause()

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM collaboration`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count collaborations: %w", err)
	}

	pageArgs := append(args, PageSize, filter.offset())
	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(
			`SELECT %s FROM collaboration%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			columns, where, len(pageArgs)-1, len(pageArgs),
		),
		pageArgs...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list collaborations: %w", err)
	}
	defer rows.Close()

	collaborations, err := rows2collaborations(rows)
	if err != nil {
		return nil, 0, err
	}

	log.Tracef("listed %d/%d collaborations, page %d", len(collaborations), total, filter.Page)
	return collaborations, total, nil
}

func (r *Repo) All(ctx context.Context) ([]*Collaboration, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "collaborationsRepo.All")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM collaboration ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("all collaborations: %w", err)
	}
	defer rows.Close()

	return rows2collaborations(rows)
}

func (r *Repo) Update(ctx context.Context, id string, patch Patch) (*Collaboration, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "collaborationsRepo.Update")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}
	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Status != nil {
		addSet("status", *patch.Status)
	}
	if patch.Title != nil {
		addSet("title", *patch.Title)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.Organization != nil {
		addSet("organization", *patch.Organization)
	}
	if patch.Link != nil {
		addSet("link", *patch.Link)
	}
	args = append(args, id)

	row := r.db.QueryRow(
		ctx,
		fmt.Sprintf(
			`UPDATE collaboration SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), columns,
		),
		args...,
	)
	c, err := scanCollaboration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update collaboration %s: %w", id, err)
	}

	return c, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM collaboration WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete collaboration %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (f ListFilter) whereClause() (string, []any) {
	var conditions []string
	var args []any

	if f.Query != "" {
		args = append(args, "%"+escapeLike(f.Query)+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if len(f.Types) > 0 {
		types := make([]string, 0, len(f.Types))
		for _, t := range f.Types {
			types = append(types, string(t))
		}
		args = append(args, types)
		conditions = append(conditions, fmt.Sprintf("type = ANY($%d)", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanCollaboration(row pgx.Row) (*Collaboration, error) {
	var c Collaboration
	if err := row.Scan(
		&c.ID, &c.Type, &c.Title, &c.FullName, &c.Organization,
		&c.Description, &c.Link, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func rows2collaborations(rows pgx.Rows) ([]*Collaboration, error) {
	collaborations := []*Collaboration{}
	for rows.Next() {
		c, err := scanCollaboration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collaboration: %w", err)
		}
		collaborations = append(collaborations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return collaborations, nil
}
