// Package users is the admin-facing user directory.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("user not found")

// ErrEmailTaken marks a unique-email violation.
var ErrEmailTaken = errors.New("email is already taken")

type User struct {
	ID    int64
	Name  string
	Email string
}

type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	// List returns all users when ids is empty, paged by from/size.
	List(ctx context.Context, ids []int64, from, size int) ([]User, error)
	Delete(ctx context.Context, id int64) error
	Ensure(ctx context.Context, id int64) error
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "users").Logger()}
}

func (s *Service) Create(ctx context.Context, name, email string) (*User, error) {
	user, err := s.repo.Create(ctx, &User{Name: name, Email: email})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *Service) List(ctx context.Context, ids []int64, from, size int) ([]User, error) {
	return s.repo.List(ctx, ids, from, size)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Ensure(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
