package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/server/internal/domain/categories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// foreignKeyViolation is the SQLSTATE raised when deleting a category that
// still has events attached.
const foreignKeyViolation = "23503"

var _ categories.Repository = (*CategoryRepository)(nil)

type CategoryRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *CategoryRepository) Create(ctx context.Context, category *categories.Category) (*categories.Category, error) {
	err := r.queryer().QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`,
		category.Name,
	).Scan(&category.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, categories.ErrConflict
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return category, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id int64) (*categories.Category, error) {
	var category categories.Category
	err := r.queryer().QueryRow(ctx,
		`SELECT id, name FROM categories WHERE id = $1`, id,
	).Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, categories.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context, from, size int) ([]categories.Category, error) {
	rows, err := r.queryer().Query(ctx,
		`SELECT id, name FROM categories ORDER BY id OFFSET $1 LIMIT $2`, from, size)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []categories.Category
	for rows.Next() {
		var category categories.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, category)
	}
	return list, rows.Err()
}

func (r *CategoryRepository) Save(ctx context.Context, category *categories.Category) (*categories.Category, error) {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE categories SET name = $2 WHERE id = $1`,
		category.ID, category.Name,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, categories.ErrConflict
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, categories.ErrNotFound
	}
	return category, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return categories.ErrConflict
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return categories.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Ensure(ctx context.Context, id int64) error {
	var exists bool
	err := r.queryer().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return categories.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
