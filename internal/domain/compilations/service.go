// Package compilations groups events into curated, optionally pinned sets.
// The event membership is held as explicit id references, never as object
// graphs.
package compilations

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/server/internal/domain/events"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("compilation not found")

type Compilation struct {
	ID       int64
	Title    string
	Pinned   bool
	EventIDs []int64
}

// WithEvents is a compilation with its member events resolved and decorated
// for the read path.
type WithEvents struct {
	Compilation
	Events []events.WithStats
}

type NewCompilation struct {
	Title    string
	Pinned   *bool
	EventIDs []int64
}

type Patch struct {
	Title    *string
	Pinned   *bool
	EventIDs []int64 // nil leaves membership untouched; empty clears it
}

type Repository interface {
	Create(ctx context.Context, compilation *Compilation) (*Compilation, error)
	Get(ctx context.Context, id int64) (*Compilation, error)
	ListByPinned(ctx context.Context, pinned *bool, from, size int) ([]Compilation, error)
	Save(ctx context.Context, compilation *Compilation) (*Compilation, error)
	Delete(ctx context.Context, id int64) error
	Ensure(ctx context.Context, id int64) error
}

// EventCatalog resolves and decorates member events.
type EventCatalog interface {
	DecorateByIDs(ctx context.Context, ids []int64) ([]events.WithStats, error)
}

type Service struct {
	repo    Repository
	catalog EventCatalog
	logger  zerolog.Logger
}

func NewService(repo Repository, catalog EventCatalog, logger zerolog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, logger: logger.With().Str("component", "compilations").Logger()}
}

func (s *Service) Create(ctx context.Context, draft NewCompilation) (*WithEvents, error) {
	compilation := &Compilation{Title: draft.Title, EventIDs: draft.EventIDs}
	if draft.Pinned != nil {
		compilation.Pinned = *draft.Pinned
	}
	created, err := s.repo.Create(ctx, compilation)
	if err != nil {
		return nil, fmt.Errorf("create compilation: %w", err)
	}
	s.logger.Info().Int64("compilation_id", created.ID).Msg("compilation created")
	return s.resolve(ctx, created)
}

func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*WithEvents, error) {
	compilation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		compilation.Title = *patch.Title
	}
	if patch.Pinned != nil {
		compilation.Pinned = *patch.Pinned
	}
	if patch.EventIDs != nil {
		compilation.EventIDs = patch.EventIDs
	}
	saved, err := s.repo.Save(ctx, compilation)
	if err != nil {
		return nil, fmt.Errorf("update compilation: %w", err)
	}
	return s.resolve(ctx, saved)
}

func (s *Service) Get(ctx context.Context, id int64) (*WithEvents, error) {
	compilation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, compilation)
}

func (s *Service) ListByPinned(ctx context.Context, pinned *bool, from, size int) ([]WithEvents, error) {
	list, err := s.repo.ListByPinned(ctx, pinned, from, size)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	resolved := make([]WithEvents, 0, len(list))
	for i := range list {
		item, err := s.resolve(ctx, &list[i])
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *item)
	}
	return resolved, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Ensure(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete compilation: %w", err)
	}
	s.logger.Info().Int64("compilation_id", id).Msg("compilation deleted")
	return nil
}

func (s *Service) resolve(ctx context.Context, compilation *Compilation) (*WithEvents, error) {
	members, err := s.catalog.DecorateByIDs(ctx, compilation.EventIDs)
	if err != nil {
		return nil, err
	}
	return &WithEvents{Compilation: *compilation, Events: members}, nil
}
