// Package postgres implements the storage repositories over pgx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/attendly/server/internal/domain/categories"
	"github.com/attendly/server/internal/domain/comments"
	"github.com/attendly/server/internal/domain/compilations"
	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/domain/requests"
	"github.com/attendly/server/internal/domain/users"
	"github.com/attendly/server/internal/stats"
	"github.com/attendly/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultLockTimeout bounds the wait for an event row lock; exceeding it
// surfaces as events.ErrBusy rather than blocking the caller indefinitely.
const DefaultLockTimeout = 3 * time.Second

type Repository struct {
	pool        *pgxpool.Pool
	tx          pgx.Tx
	lockTimeout time.Duration
}

func NewRepository(pool *pgxpool.Pool, lockTimeout time.Duration) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Repository{pool: pool, lockTimeout: lockTimeout}, nil
}

func (r *Repository) Events() events.Repository {
	return &EventRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Locations() events.LocationRepository {
	return &LocationRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Requests() requests.Repository {
	return &RequestRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Categories() categories.Repository {
	return &CategoryRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Compilations() compilations.Repository {
	return &CompilationRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Comments() comments.Repository {
	return &CommentRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Stats() stats.Repository {
	return &StatsRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// Bound every row-lock wait in this transaction; 55P03 from a FOR UPDATE
	// is mapped to ErrBusy by the repositories.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("set lock timeout: %w", err)
	}

	wrapped := &Repository{pool: r.pool, tx: tx, lockTimeout: r.lockTimeout}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// AdmissionStore narrows the aggregate repository to the store contract of
// the request admission engine.
type AdmissionStore struct {
	repo *Repository
}

func NewAdmissionStore(repo *Repository) *AdmissionStore {
	return &AdmissionStore{repo: repo}
}

func (s *AdmissionStore) Events() events.Repository { return s.repo.Events() }

func (s *AdmissionStore) Requests() requests.Repository { return s.repo.Requests() }

func (s *AdmissionStore) Users() requests.UserDirectory { return s.repo.Users() }

func (s *AdmissionStore) WithTx(ctx context.Context, fn func(context.Context, requests.Store) error) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, r storage.Repository) error {
		tx, ok := r.(*Repository)
		if !ok {
			return fmt.Errorf("unexpected repository type %T", r)
		}
		return fn(ctx, &AdmissionStore{repo: tx})
	})
}

type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}
