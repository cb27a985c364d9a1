package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository records first-seen Telegram identities. Registration is
// insert-if-absent: repeat registrations are no-ops regardless of name changes.
type UserRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewUserRepository(pool PgxPool, tracer trace.Tracer) *UserRepository {
	return &UserRepository{pool: pool, tracer: tracer}
}

func (r *UserRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "user-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS users (
    user_id       BIGINT PRIMARY KEY,
    username      TEXT NOT NULL DEFAULT '',
    full_name     TEXT NOT NULL DEFAULT '',
    registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	return err
}

func (r *UserRepository) Upsert(ctx context.Context, userID int64, username, fullName string) error {
	_, span := r.tracer.Start(ctx, "user-repo.upsert")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (user_id, username, full_name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, username, fullName,
	)
	return err
}
