package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/server/internal/domain/requests"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE for duplicate-key errors.
const uniqueViolation = "23505"

var _ requests.Repository = (*RequestRepository)(nil)

type RequestRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const requestColumns = `id, event_id, requester_id, created, status`

func (r *RequestRepository) Create(ctx context.Context, request *requests.Request) (*requests.Request, error) {
	err := r.queryer().QueryRow(ctx, `
INSERT INTO requests (event_id, requester_id, created, status)
VALUES ($1, $2, $3, $4)
RETURNING id`,
		request.EventID, request.RequesterID, request.Created, string(request.Status),
	).Scan(&request.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, requests.ErrConflict
		}
		return nil, fmt.Errorf("insert request: %w", err)
	}
	return request, nil
}

func (r *RequestRepository) Get(ctx context.Context, id int64) (*requests.Request, error) {
	var request requests.Request
	err := r.queryer().QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1`, id,
	).Scan(&request.ID, &request.EventID, &request.RequesterID, &request.Created, (*string)(&request.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, requests.ErrNotFound
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return &request, nil
}

func (r *RequestRepository) FindByIDs(ctx context.Context, ids []int64) ([]requests.Request, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.queryer().Query(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = ANY($1) ORDER BY array_position($1::bigint[], id)`, ids)
	if err != nil {
		return nil, fmt.Errorf("find requests by ids: %w", err)
	}
	return scanRequests(rows)
}

func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]requests.Request, error) {
	rows, err := r.queryer().Query(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE requester_id = $1 ORDER BY id`, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requests by requester: %w", err)
	}
	return scanRequests(rows)
}

func (r *RequestRepository) ListByEventAndInitiator(ctx context.Context, eventID, initiatorID int64) ([]requests.Request, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT r.id, r.event_id, r.requester_id, r.created, r.status
  FROM requests r
  JOIN events e ON e.id = r.event_id
 WHERE r.event_id = $1 AND e.initiator_id = $2
 ORDER BY r.id`, eventID, initiatorID)
	if err != nil {
		return nil, fmt.Errorf("list requests by event: %w", err)
	}
	return scanRequests(rows)
}

// ActiveExists reports whether the requester already has a non-canceled
// request for the event.
func (r *RequestRepository) ActiveExists(ctx context.Context, eventID, requesterID int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM requests
	 WHERE event_id = $1 AND requester_id = $2 AND status <> 'CANCELED'
)`, eventID, requesterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active request: %w", err)
	}
	return exists, nil
}

func (r *RequestRepository) CountByEventAndStatus(ctx context.Context, eventID int64, status requests.Status) (int64, error) {
	var count int64
	err := r.queryer().QueryRow(ctx,
		`SELECT count(*) FROM requests WHERE event_id = $1 AND status = $2`,
		eventID, string(status),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return count, nil
}

func (r *RequestRepository) CountByEventsAndStatus(ctx context.Context, eventIDs []int64, status requests.Status) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	rows, err := r.queryer().Query(ctx, `
SELECT event_id, count(*)
  FROM requests
 WHERE event_id = ANY($1) AND status = $2
 GROUP BY event_id`, eventIDs, string(status))
	if err != nil {
		return nil, fmt.Errorf("count requests by events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var eventID, count int64
		if err := rows.Scan(&eventID, &count); err != nil {
			return nil, fmt.Errorf("scan request count: %w", err)
		}
		counts[eventID] = count
	}
	return counts, rows.Err()
}

func (r *RequestRepository) Save(ctx context.Context, request *requests.Request) (*requests.Request, error) {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE requests SET status = $2 WHERE id = $1`,
		request.ID, string(request.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, requests.ErrNotFound
	}
	return request, nil
}

func (r *RequestRepository) SaveAll(ctx context.Context, batch []requests.Request) error {
	if len(batch) == 0 {
		return nil
	}
	updates := &pgx.Batch{}
	for _, item := range batch {
		updates.Queue(`UPDATE requests SET status = $2 WHERE id = $1`, item.ID, string(item.Status))
	}
	results := r.queryer().SendBatch(ctx, updates)
	defer results.Close()
	for range batch {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("update requests: %w", err)
		}
	}
	return nil
}

func (r *RequestRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanRequests(rows pgx.Rows) ([]requests.Request, error) {
	defer rows.Close()
	var list []requests.Request
	for rows.Next() {
		var request requests.Request
		if err := rows.Scan(&request.ID, &request.EventID, &request.RequesterID,
			&request.Created, (*string)(&request.Status)); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		list = append(list, request)
	}
	return list, rows.Err()
}
