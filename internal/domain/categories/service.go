// Package categories is the event category reference data.
package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("category not found")

// ErrConflict marks a unique-name violation or a delete while events still
// reference the category.
var ErrConflict = errors.New("category conflict")

type Category struct {
	ID   int64
	Name string
}

type Repository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	Get(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context, from, size int) ([]Category, error)
	Save(ctx context.Context, category *Category) (*Category, error)
	// Delete returns ErrConflict while events reference the category.
	Delete(ctx context.Context, id int64) error
	Ensure(ctx context.Context, id int64) error
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "categories").Logger()}
}

func (s *Service) Create(ctx context.Context, name string) (*Category, error) {
	category, err := s.repo.Create(ctx, &Category{Name: name})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.Info().Int64("category_id", category.ID).Msg("category created")
	return category, nil
}

func (s *Service) Update(ctx context.Context, id int64, name string) (*Category, error) {
	category, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	saved, err := s.repo.Save(ctx, category)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, from, size int) ([]Category, error) {
	return s.repo.List(ctx, from, size)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Ensure(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrConflict) {
			return err
		}
		return fmt.Errorf("delete category: %w", err)
	}
	s.logger.Info().Int64("category_id", id).Msg("category deleted")
	return nil
}
