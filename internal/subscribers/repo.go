package subscribers

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
)

var _ subscribersRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Exists(ctx context.Context, email string) (bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "subscribersRepo.Exists")
	defer span.End()

	var id string
	err := r.db.QueryRow(ctx, `SELECT id FROM subscriber WHERE email = $1`, email).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check subscriber: %w", err)
	}
	return true, nil
}

// Add returns ErrAlreadySubscribed when the email is already stored.
func (r *Repo) Add(ctx context.Context, email string) (*Subscriber, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "subscribersRepo.Add")
	defer span.End()

	subscriber := &Subscriber{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO subscriber (id, email, created_at) VALUES ($1, $2, $3)`,
		subscriber.ID, subscriber.Email, subscriber.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("insert subscriber: %w", err)
	}

	return subscriber, nil
}

// All returns subscribers, newest first.
func (r *Repo) All(ctx context.Context) ([]*Subscriber, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "subscribersRepo.All")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT id, email, created_at FROM subscriber ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := []*Subscriber{}
	for rows.Next() {
		var s Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subscribers = append(subscribers, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subscribers, nil
}
