// Package stats is the hit-counting view-statistics collector: it records
// one endpoint hit per public view and answers windowed, optionally
// IP-deduplicated view counts per resource URI.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type EndpointHit struct {
	ID        int64
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

type ViewStats struct {
	App  string
	URI  string
	Hits int64
}

// ValidationError marks a malformed stats query.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type Repository interface {
	SaveHit(ctx context.Context, hit EndpointHit) (EndpointHit, error)
	// ViewStats groups hits by app and uri over [start, end]; an empty uris
	// slice means all uris. uniqueByIP counts distinct client IPs instead of
	// raw hits. Ordered by hits descending.
	ViewStats(ctx context.Context, start, end time.Time, uris []string, uniqueByIP bool) ([]ViewStats, error)
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "stats").Logger()}
}

func (s *Service) RecordHit(ctx context.Context, hit EndpointHit) (EndpointHit, error) {
	saved, err := s.repo.SaveHit(ctx, hit)
	if err != nil {
		return EndpointHit{}, fmt.Errorf("save hit: %w", err)
	}
	s.logger.Debug().Str("uri", hit.URI).Str("app", hit.App).Msg("hit recorded")
	return saved, nil
}

func (s *Service) Stats(ctx context.Context, start, end time.Time, uris []string, uniqueByIP bool) ([]ViewStats, error) {
	if start.After(end) {
		return nil, ValidationError{Field: "start", Message: "must not be after end"}
	}
	list, err := s.repo.ViewStats(ctx, start, end, uris, uniqueByIP)
	if err != nil {
		return nil, fmt.Errorf("view stats: %w", err)
	}
	return list, nil
}
