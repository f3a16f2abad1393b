// Package comments holds user commentary on published events.
package comments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/attendly/server/internal/domain/events"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("comment not found")

// ErrConflict marks commenting on an unpublished event or touching another
// author's comment.
var ErrConflict = errors.New("comment conflict")

type Comment struct {
	ID       int64
	EventID  int64
	AuthorID int64
	Message  string
	Created  time.Time
}

type Repository interface {
	Create(ctx context.Context, comment *Comment) (*Comment, error)
	Get(ctx context.Context, id int64) (*Comment, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]Comment, error)
	ListByEvent(ctx context.Context, eventID int64, from, size int) ([]Comment, error)
	Save(ctx context.Context, comment *Comment) (*Comment, error)
	Delete(ctx context.Context, id int64) error
}

// EventCatalog exposes the event lookups the comment rules need.
type EventCatalog interface {
	Get(ctx context.Context, id int64) (*events.Event, error)
}

type UserDirectory interface {
	Ensure(ctx context.Context, userID int64) error
}

type Service struct {
	repo   Repository
	events EventCatalog
	users  UserDirectory
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(repo Repository, catalog EventCatalog, users UserDirectory, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: catalog,
		users:  users,
		now:    time.Now,
		logger: logger.With().Str("component", "comments").Logger(),
	}
}

// Create adds a comment; only published events accept comments.
func (s *Service) Create(ctx context.Context, authorID, eventID int64, message string) (*Comment, error) {
	if err := s.users.Ensure(ctx, authorID); err != nil {
		return nil, err
	}
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State != events.StatePublished {
		return nil, fmt.Errorf("%w: event %d is not published", ErrConflict, eventID)
	}
	comment, err := s.repo.Create(ctx, &Comment{
		EventID:  eventID,
		AuthorID: authorID,
		Message:  message,
		Created:  s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.logger.Info().Int64("comment_id", comment.ID).Int64("event_id", eventID).Msg("comment created")
	return comment, nil
}

// Update rewrites the author's own comment; blank messages leave it as is.
func (s *Service) Update(ctx context.Context, authorID, commentID int64, message string) (*Comment, error) {
	comment, err := s.ownComment(ctx, authorID, commentID)
	if err != nil {
		return nil, err
	}
	if message != "" {
		comment.Message = message
	}
	saved, err := s.repo.Save(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	return saved, nil
}

func (s *Service) GetByAuthor(ctx context.Context, authorID, commentID int64) (*Comment, error) {
	return s.ownComment(ctx, authorID, commentID)
}

func (s *Service) ListByAuthor(ctx context.Context, authorID int64) ([]Comment, error) {
	if err := s.users.Ensure(ctx, authorID); err != nil {
		return nil, err
	}
	return s.repo.ListByAuthor(ctx, authorID)
}

func (s *Service) ListByEvent(ctx context.Context, eventID int64, from, size int) ([]Comment, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListByEvent(ctx, eventID, from, size)
}

func (s *Service) DeleteByAuthor(ctx context.Context, authorID, commentID int64) error {
	if _, err := s.ownComment(ctx, authorID, commentID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	s.logger.Info().Int64("comment_id", commentID).Int64("author_id", authorID).Msg("comment deleted")
	return nil
}

// DeleteByAdmin removes any comment without an ownership check.
func (s *Service) DeleteByAdmin(ctx context.Context, commentID int64) error {
	if _, err := s.repo.Get(ctx, commentID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	s.logger.Info().Int64("comment_id", commentID).Msg("comment deleted by admin")
	return nil
}

func (s *Service) ownComment(ctx context.Context, authorID, commentID int64) (*Comment, error) {
	if err := s.users.Ensure(ctx, authorID); err != nil {
		return nil, err
	}
	comment, err := s.repo.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != authorID {
		return nil, fmt.Errorf("%w: comment %d belongs to another author", ErrConflict, commentID)
	}
	return comment, nil
}
