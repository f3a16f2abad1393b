package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/server/internal/domain/comments"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ comments.Repository = (*CommentRepository)(nil)

type CommentRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const commentColumns = `id, event_id, author_id, message, created`

func (r *CommentRepository) Create(ctx context.Context, comment *comments.Comment) (*comments.Comment, error) {
	err := r.queryer().QueryRow(ctx, `
INSERT INTO comments (event_id, author_id, message, created)
VALUES ($1, $2, $3, $4)
RETURNING id`,
		comment.EventID, comment.AuthorID, comment.Message, comment.Created,
	).Scan(&comment.ID)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return comment, nil
}

func (r *CommentRepository) Get(ctx context.Context, id int64) (*comments.Comment, error) {
	var comment comments.Comment
	err := r.queryer().QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id,
	).Scan(&comment.ID, &comment.EventID, &comment.AuthorID, &comment.Message, &comment.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, comments.ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

func (r *CommentRepository) ListByAuthor(ctx context.Context, authorID int64) ([]comments.Comment, error) {
	rows, err := r.queryer().Query(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE author_id = $1 ORDER BY created DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list comments by author: %w", err)
	}
	return scanComments(rows)
}

func (r *CommentRepository) ListByEvent(ctx context.Context, eventID int64, from, size int) ([]comments.Comment, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+commentColumns+`
  FROM comments
 WHERE event_id = $1
 ORDER BY created DESC
OFFSET $2 LIMIT $3`, eventID, from, size)
	if err != nil {
		return nil, fmt.Errorf("list comments by event: %w", err)
	}
	return scanComments(rows)
}

func (r *CommentRepository) Save(ctx context.Context, comment *comments.Comment) (*comments.Comment, error) {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE comments SET message = $2 WHERE id = $1`,
		comment.ID, comment.Message,
	)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, comments.ErrNotFound
	}
	return comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return comments.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanComments(rows pgx.Rows) ([]comments.Comment, error) {
	defer rows.Close()
	var list []comments.Comment
	for rows.Next() {
		var comment comments.Comment
		if err := rows.Scan(&comment.ID, &comment.EventID, &comment.AuthorID,
			&comment.Message, &comment.Created); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		list = append(list, comment)
	}
	return list, rows.Err()
}
