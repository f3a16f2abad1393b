// Package requests implements the capacity-constrained admission engine for
// participation requests, together with the capacity accountant it uses.
package requests

import (
	"context"
	"fmt"
	"time"

	"github.com/attendly/server/internal/domain/events"
	"github.com/rs/zerolog"
)

// Service orchestrates admission and bulk moderation. Both mutating paths
// serialize on the target event's row lock for their whole
// read-check-write sequence; that lock is what upholds the
// "confirmed <= limit" invariant across the two tables.
type Service struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "requests").Logger(),
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create admits a single participation request against a published event.
func (s *Service) Create(ctx context.Context, requesterID, eventID int64) (*Request, error) {
	var created *Request
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		if err := tx.Users().Ensure(ctx, requesterID); err != nil {
			return err
		}
		event, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		active, err := tx.Requests().ActiveExists(ctx, eventID, requesterID)
		if err != nil {
			return fmt.Errorf("check active request: %w", err)
		}
		if active {
			return fmt.Errorf("%w: requester %d already has an active request", ErrConflict, requesterID)
		}
		if event.InitiatorID == requesterID {
			return fmt.Errorf("%w: initiator cannot request own event", ErrConflict)
		}
		if event.State != events.StatePublished {
			return fmt.Errorf("%w: event %d is not published", ErrConflict, eventID)
		}
		if event.ParticipantLimit != 0 {
			confirmed, err := tx.Requests().CountByEventAndStatus(ctx, eventID, StatusConfirmed)
			if err != nil {
				return fmt.Errorf("count confirmed requests: %w", err)
			}
			if !HasCapacity(event.ParticipantLimit, confirmed) {
				return fmt.Errorf("%w: participant limit reached", ErrConflict)
			}
		}

		request := &Request{
			EventID:     eventID,
			RequesterID: requesterID,
			Created:     s.now(),
			Status:      InitialStatus(event.RequestModeration, event.ParticipantLimit),
		}
		created, err = tx.Requests().Create(ctx, request)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("request_id", created.ID).
		Int64("event_id", eventID).
		Int64("requester_id", requesterID).
		Str("status", string(created.Status)).
		Msg("request created")
	return created, nil
}

// Cancel sets the requester's own request to CANCELED. Canceling an already
// canceled request succeeds and leaves the status unchanged.
func (s *Service) Cancel(ctx context.Context, requesterID, requestID int64) (*Request, error) {
	if err := s.store.Users().Ensure(ctx, requesterID); err != nil {
		return nil, err
	}
	request, err := s.store.Requests().Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != requesterID {
		return nil, ErrNotFound
	}
	request.Status = StatusCanceled
	saved, err := s.store.Requests().Save(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("save request: %w", err)
	}
	s.logger.Info().Int64("request_id", requestID).Int64("requester_id", requesterID).Msg("request canceled")
	return saved, nil
}

// UpdateStatuses is the bulk-moderation operation: the event owner confirms
// or rejects a batch of PENDING requests. Events that auto-confirm
// (moderation off or unlimited) never need moderation and yield an empty
// result. When capacity covers only part of a CONFIRMED batch, requests are
// confirmed in input-list order and the remainder is rejected. The whole
// batch commits atomically.
func (s *Service) UpdateStatuses(ctx context.Context, ownerID, eventID int64, requestIDs []int64, desired Status) (*UpdateResult, error) {
	result := &UpdateResult{}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		if err := tx.Users().Ensure(ctx, ownerID); err != nil {
			return err
		}
		event, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if !event.RequestModeration || event.ParticipantLimit == 0 {
			return nil
		}
		if event.InitiatorID != ownerID {
			return fmt.Errorf("%w: only the event initiator can moderate requests", ErrConflict)
		}

		batch, err := tx.Requests().FindByIDs(ctx, requestIDs)
		if err != nil {
			return fmt.Errorf("load requests: %w", err)
		}
		for _, request := range batch {
			if request.Status != StatusPending {
				return fmt.Errorf("%w: request %d is not pending", ErrConflict, request.ID)
			}
		}
		if desired != StatusConfirmed && desired != StatusRejected {
			return fmt.Errorf("%w: status must be CONFIRMED or REJECTED", ErrConflict)
		}

		confirmed, err := tx.Requests().CountByEventAndStatus(ctx, eventID, StatusConfirmed)
		if err != nil {
			return fmt.Errorf("count confirmed requests: %w", err)
		}
		freeSeats := FreeSeats(event.ParticipantLimit, confirmed)
		if freeSeats == 0 {
			return fmt.Errorf("%w: participant limit reached", ErrConflict)
		}

		// Batch order is the caller's input-list order. When capacity covers
		// only part of a CONFIRMED batch, the first freeSeats requests win.
		if desired == StatusRejected || freeSeats >= int64(len(batch)) {
			for i := range batch {
				batch[i].Status = desired
			}
		} else {
			for i := range batch {
				if int64(i) < freeSeats {
					batch[i].Status = StatusConfirmed
				} else {
					batch[i].Status = StatusRejected
				}
			}
		}

		if err := tx.Requests().SaveAll(ctx, batch); err != nil {
			return fmt.Errorf("save requests: %w", err)
		}
		for _, request := range batch {
			if request.Status == StatusConfirmed {
				result.Confirmed = append(result.Confirmed, request)
			} else {
				result.Rejected = append(result.Rejected, request)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("event_id", eventID).
		Int64("owner_id", ownerID).
		Int("confirmed", len(result.Confirmed)).
		Int("rejected", len(result.Rejected)).
		Msg("request statuses updated")
	return result, nil
}

// ListByRequester returns every request the user has submitted.
func (s *Service) ListByRequester(ctx context.Context, requesterID int64) ([]Request, error) {
	if err := s.store.Users().Ensure(ctx, requesterID); err != nil {
		return nil, err
	}
	list, err := s.store.Requests().ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requests by requester: %w", err)
	}
	return list, nil
}

// ListForEventOwner returns the requests against an event the caller owns.
// Events the caller does not own yield an empty list.
func (s *Service) ListForEventOwner(ctx context.Context, ownerID, eventID int64) ([]Request, error) {
	if err := s.store.Users().Ensure(ctx, ownerID); err != nil {
		return nil, err
	}
	list, err := s.store.Requests().ListByEventAndInitiator(ctx, eventID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list requests for event owner: %w", err)
	}
	return list, nil
}
