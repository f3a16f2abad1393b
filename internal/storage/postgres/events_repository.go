package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// lockNotAvailable is the SQLSTATE raised when lock_timeout expires while
// waiting on a FOR UPDATE lock.
const lockNotAvailable = "55P03"

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const eventColumns = `
	e.id, e.title, e.annotation, e.description, e.category_id, e.initiator_id,
	l.id, l.lat, l.lon,
	e.event_date, e.created_on, e.published_on,
	e.paid, e.participant_limit, e.request_moderation, e.state`

const eventFrom = ` FROM events e JOIN locations l ON l.id = e.location_id`

func (r *EventRepository) Create(ctx context.Context, event *events.Event) (*events.Event, error) {
	err := r.queryer().QueryRow(ctx, `
INSERT INTO events (title, annotation, description, category_id, initiator_id, location_id,
                    event_date, created_on, published_on, paid, participant_limit, request_moderation, state)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id`,
		event.Title, event.Annotation, event.Description, event.CategoryID, event.InitiatorID,
		event.Location.ID, event.EventDate, event.CreatedOn, event.PublishedOn,
		event.Paid, event.ParticipantLimit, event.RequestModeration, string(event.State),
	).Scan(&event.ID)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Get(ctx context.Context, id int64) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `SELECT`+eventColumns+eventFrom+` WHERE e.id = $1`, id)
	return scanEventRow(row)
}

func (r *EventRepository) GetForUpdate(ctx context.Context, id int64) (*events.Event, error) {
	if r.tx == nil {
		return nil, fmt.Errorf("get event for update: requires a transaction")
	}
	row := r.tx.QueryRow(ctx, `SELECT`+eventColumns+eventFrom+` WHERE e.id = $1 FOR UPDATE OF e`, id)
	event, err := scanEventRow(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == lockNotAvailable {
			metrics.LockTimeouts.Inc()
			return nil, events.ErrBusy
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) Save(ctx context.Context, event *events.Event) (*events.Event, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET title = $2, annotation = $3, description = $4, category_id = $5, location_id = $6,
       event_date = $7, published_on = $8, paid = $9, participant_limit = $10,
       request_moderation = $11, state = $12
 WHERE id = $1`,
		event.ID, event.Title, event.Annotation, event.Description, event.CategoryID,
		event.Location.ID, event.EventDate, event.PublishedOn, event.Paid,
		event.ParticipantLimit, event.RequestModeration, string(event.State),
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, events.ErrNotFound
	}
	return event, nil
}

func (r *EventRepository) FindByIDs(ctx context.Context, ids []int64) ([]events.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.queryer().Query(ctx,
		`SELECT`+eventColumns+eventFrom+` WHERE e.id = ANY($1) ORDER BY e.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("find events by ids: %w", err)
	}
	return scanEvents(rows)
}

func (r *EventRepository) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx,
		`SELECT`+eventColumns+eventFrom+` WHERE e.id = $1 AND e.initiator_id = $2`, id, initiatorID)
	return scanEventRow(row)
}

func (r *EventRepository) ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT`+eventColumns+eventFrom+`
 WHERE e.initiator_id = $1
 ORDER BY e.id
OFFSET $2 LIMIT $3`, initiatorID, from, size)
	if err != nil {
		return nil, fmt.Errorf("list events by initiator: %w", err)
	}
	return scanEvents(rows)
}

func (r *EventRepository) ListAdmin(ctx context.Context, filters events.AdminFilters, from, size int) ([]events.Event, error) {
	states := make([]string, 0, len(filters.States))
	for _, state := range filters.States {
		states = append(states, string(state))
	}
	rows, err := r.queryer().Query(ctx, `
SELECT`+eventColumns+eventFrom+`
 WHERE (coalesce(cardinality($1::bigint[]), 0) = 0 OR e.initiator_id = ANY($1::bigint[]))
   AND (coalesce(cardinality($2::text[]), 0) = 0 OR e.state = ANY($2::text[]))
   AND (coalesce(cardinality($3::bigint[]), 0) = 0 OR e.category_id = ANY($3::bigint[]))
   AND ($4::timestamptz IS NULL OR e.event_date >= $4::timestamptz)
   AND ($5::timestamptz IS NULL OR e.event_date < $5::timestamptz)
 ORDER BY e.id
OFFSET $6 LIMIT $7`,
		nilIfEmptyInt64(filters.UserIDs),
		nilIfEmptyString(states),
		nilIfEmptyInt64(filters.CategoryIDs),
		filters.RangeStart,
		filters.RangeEnd,
		from, size,
	)
	if err != nil {
		return nil, fmt.Errorf("list events by admin: %w", err)
	}
	return scanEvents(rows)
}

func (r *EventRepository) ListPublic(ctx context.Context, filters events.PublicFilters, from, size int) ([]events.Event, error) {
	orderBy := "e.id"
	if filters.Sort == events.SortEventDate {
		orderBy = "e.event_date"
	}
	rows, err := r.queryer().Query(ctx, `
SELECT`+eventColumns+eventFrom+`
 WHERE e.state = 'PUBLISHED'
   AND ($1 = '' OR e.annotation ILIKE '%' || $1 || '%' OR e.description ILIKE '%' || $1 || '%')
   AND (coalesce(cardinality($2::bigint[]), 0) = 0 OR e.category_id = ANY($2::bigint[]))
   AND ($3::boolean IS NULL OR e.paid = $3::boolean)
   AND ($4::timestamptz IS NULL OR e.event_date >= $4::timestamptz)
   AND ($5::timestamptz IS NULL OR e.event_date < $5::timestamptz)
 ORDER BY `+orderBy+`
OFFSET $6 LIMIT $7`,
		filters.Text,
		nilIfEmptyInt64(filters.CategoryIDs),
		filters.Paid,
		filters.RangeStart,
		filters.RangeEnd,
		from, size,
	)
	if err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	return scanEvents(rows)
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanEventRow(row pgx.Row) (*events.Event, error) {
	var event events.Event
	err := row.Scan(
		&event.ID, &event.Title, &event.Annotation, &event.Description,
		&event.CategoryID, &event.InitiatorID,
		&event.Location.ID, &event.Location.Lat, &event.Location.Lon,
		&event.EventDate, &event.CreatedOn, &event.PublishedOn,
		&event.Paid, &event.ParticipantLimit, &event.RequestModeration, (*string)(&event.State),
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &event, nil
}

func scanEvents(rows pgx.Rows) ([]events.Event, error) {
	defer rows.Close()
	var list []events.Event
	for rows.Next() {
		var event events.Event
		if err := rows.Scan(
			&event.ID, &event.Title, &event.Annotation, &event.Description,
			&event.CategoryID, &event.InitiatorID,
			&event.Location.ID, &event.Location.Lat, &event.Location.Lon,
			&event.EventDate, &event.CreatedOn, &event.PublishedOn,
			&event.Paid, &event.ParticipantLimit, &event.RequestModeration, (*string)(&event.State),
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		list = append(list, event)
	}
	return list, rows.Err()
}

func nilIfEmptyInt64(ids []int64) any {
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func nilIfEmptyString(items []string) any {
	if len(items) == 0 {
		return nil
	}
	return items
}

var _ events.LocationRepository = (*LocationRepository)(nil)

type LocationRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// GetOrCreate resolves by exact coordinates; the unique (lat, lon) index
// makes the insert race-safe.
func (r *LocationRepository) GetOrCreate(ctx context.Context, lat, lon float64) (events.Location, error) {
	var location events.Location
	err := r.queryer().QueryRow(ctx, `
INSERT INTO locations (lat, lon)
VALUES ($1, $2)
ON CONFLICT (lat, lon) DO UPDATE SET lat = EXCLUDED.lat
RETURNING id, lat, lon`, lat, lon,
	).Scan(&location.ID, &location.Lat, &location.Lon)
	if err != nil {
		return events.Location{}, fmt.Errorf("get or create location: %w", err)
	}
	return location, nil
}

func (r *LocationRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
