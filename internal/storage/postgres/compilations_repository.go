package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/server/internal/domain/compilations"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ compilations.Repository = (*CompilationRepository)(nil)

type CompilationRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *CompilationRepository) Create(ctx context.Context, compilation *compilations.Compilation) (*compilations.Compilation, error) {
	err := r.queryer().QueryRow(ctx,
		`INSERT INTO compilations (title, pinned) VALUES ($1, $2) RETURNING id`,
		compilation.Title, compilation.Pinned,
	).Scan(&compilation.ID)
	if err != nil {
		return nil, fmt.Errorf("insert compilation: %w", err)
	}
	if err := r.replaceMembers(ctx, compilation.ID, compilation.EventIDs); err != nil {
		return nil, err
	}
	return compilation, nil
}

func (r *CompilationRepository) Get(ctx context.Context, id int64) (*compilations.Compilation, error) {
	var compilation compilations.Compilation
	err := r.queryer().QueryRow(ctx,
		`SELECT id, title, pinned FROM compilations WHERE id = $1`, id,
	).Scan(&compilation.ID, &compilation.Title, &compilation.Pinned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, compilations.ErrNotFound
		}
		return nil, fmt.Errorf("get compilation: %w", err)
	}
	if err := r.loadMembers(ctx, &compilation); err != nil {
		return nil, err
	}
	return &compilation, nil
}

func (r *CompilationRepository) ListByPinned(ctx context.Context, pinned *bool, from, size int) ([]compilations.Compilation, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, title, pinned
  FROM compilations
 WHERE $1::boolean IS NULL OR pinned = $1::boolean
 ORDER BY id
OFFSET $2 LIMIT $3`, pinned, from, size)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	defer rows.Close()
	var list []compilations.Compilation
	for rows.Next() {
		var compilation compilations.Compilation
		if err := rows.Scan(&compilation.ID, &compilation.Title, &compilation.Pinned); err != nil {
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		list = append(list, compilation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range list {
		if err := r.loadMembers(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *CompilationRepository) Save(ctx context.Context, compilation *compilations.Compilation) (*compilations.Compilation, error) {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE compilations SET title = $2, pinned = $3 WHERE id = $1`,
		compilation.ID, compilation.Title, compilation.Pinned,
	)
	if err != nil {
		return nil, fmt.Errorf("update compilation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, compilations.ErrNotFound
	}
	if err := r.replaceMembers(ctx, compilation.ID, compilation.EventIDs); err != nil {
		return nil, err
	}
	return compilation, nil
}

func (r *CompilationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM compilations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete compilation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return compilations.ErrNotFound
	}
	return nil
}

func (r *CompilationRepository) Ensure(ctx context.Context, id int64) error {
	var exists bool
	err := r.queryer().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM compilations WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check compilation: %w", err)
	}
	if !exists {
		return compilations.ErrNotFound
	}
	return nil
}

// replaceMembers rewrites the membership join rows wholesale; member order is
// not significant.
func (r *CompilationRepository) replaceMembers(ctx context.Context, id int64, eventIDs []int64) error {
	if _, err := r.queryer().Exec(ctx,
		`DELETE FROM compilation_events WHERE compilation_id = $1`, id); err != nil {
		return fmt.Errorf("clear compilation members: %w", err)
	}
	if len(eventIDs) == 0 {
		return nil
	}
	if _, err := r.queryer().Exec(ctx, `
INSERT INTO compilation_events (compilation_id, event_id)
SELECT $1, unnest($2::bigint[])
ON CONFLICT DO NOTHING`, id, eventIDs); err != nil {
		return fmt.Errorf("insert compilation members: %w", err)
	}
	return nil
}

func (r *CompilationRepository) loadMembers(ctx context.Context, compilation *compilations.Compilation) error {
	rows, err := r.queryer().Query(ctx,
		`SELECT event_id FROM compilation_events WHERE compilation_id = $1 ORDER BY event_id`,
		compilation.ID)
	if err != nil {
		return fmt.Errorf("load compilation members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var eventID int64
		if err := rows.Scan(&eventID); err != nil {
			return fmt.Errorf("scan compilation member: %w", err)
		}
		compilation.EventIDs = append(compilation.EventIDs, eventID)
	}
	return rows.Err()
}

func (r *CompilationRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
