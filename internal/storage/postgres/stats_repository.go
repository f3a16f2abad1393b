package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/attendly/server/internal/stats"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ stats.Repository = (*StatsRepository)(nil)

type StatsRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *StatsRepository) SaveHit(ctx context.Context, hit stats.EndpointHit) (stats.EndpointHit, error) {
	err := r.queryer().QueryRow(ctx, `
INSERT INTO endpoint_hits (app, uri, ip, created)
VALUES ($1, $2, $3, $4)
RETURNING id`,
		hit.App, hit.URI, hit.IP, hit.Timestamp,
	).Scan(&hit.ID)
	if err != nil {
		return stats.EndpointHit{}, fmt.Errorf("insert hit: %w", err)
	}
	return hit, nil
}

func (r *StatsRepository) ViewStats(ctx context.Context, start, end time.Time, uris []string, uniqueByIP bool) ([]stats.ViewStats, error) {
	counter := "count(*)"
	if uniqueByIP {
		counter = "count(DISTINCT ip)"
	}
	rows, err := r.queryer().Query(ctx, `
SELECT app, uri, `+counter+` AS hits
  FROM endpoint_hits
 WHERE created BETWEEN $1 AND $2
   AND (coalesce(cardinality($3::text[]), 0) = 0 OR uri = ANY($3::text[]))
 GROUP BY app, uri
 ORDER BY hits DESC`,
		start, end, nilIfEmptyString(uris))
	if err != nil {
		return nil, fmt.Errorf("query view stats: %w", err)
	}
	defer rows.Close()
	var list []stats.ViewStats
	for rows.Next() {
		var item stats.ViewStats
		if err := rows.Scan(&item.App, &item.URI, &item.Hits); err != nil {
			return nil, fmt.Errorf("scan view stats: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func (r *StatsRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
