// Package events owns the event lifecycle state machine and the decorated
// read paths over the event catalog.
package events

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// MinLeadTimeDraft is the earliest an event may start, measured from the
	// moment an initiator creates or edits the draft.
	MinLeadTimeDraft = 2 * time.Hour

	// MinLeadTimePublish is the earliest an event may start, measured from
	// the moment an admin edit is applied.
	MinLeadTimePublish = time.Hour
)

type Service struct {
	events     Repository
	locations  LocationRepository
	users      UserDirectory
	categories CategoryDirectory
	capacity   CapacityCounter
	views      ViewCounter
	now        func() time.Time
	logger     zerolog.Logger
}

func NewService(
	events Repository,
	locations LocationRepository,
	users UserDirectory,
	categories CategoryDirectory,
	capacity CapacityCounter,
	views ViewCounter,
	logger zerolog.Logger,
) *Service {
	return &Service{
		events:     events,
		locations:  locations,
		users:      users,
		categories: categories,
		capacity:   capacity,
		views:      views,
		now:        time.Now,
		logger:     logger.With().Str("component", "events").Logger(),
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create registers a new draft in state PENDING.
func (s *Service) Create(ctx context.Context, initiatorID int64, draft NewEvent) (*Event, error) {
	now := s.now()
	if draft.EventDate.Before(now.Add(MinLeadTimeDraft)) {
		return nil, ValidationError{Field: "eventDate", Message: "must be at least 2 hours in the future"}
	}
	if err := s.users.Ensure(ctx, initiatorID); err != nil {
		return nil, err
	}
	if err := s.categories.Ensure(ctx, draft.CategoryID); err != nil {
		return nil, err
	}
	location, err := s.locations.GetOrCreate(ctx, draft.Lat, draft.Lon)
	if err != nil {
		return nil, fmt.Errorf("resolve location: %w", err)
	}

	event := &Event{
		Title:             draft.Title,
		Annotation:        draft.Annotation,
		Description:       draft.Description,
		CategoryID:        draft.CategoryID,
		InitiatorID:       initiatorID,
		Location:          location,
		EventDate:         draft.EventDate,
		CreatedOn:         now,
		Paid:              false,
		ParticipantLimit:  0,
		RequestModeration: true,
		State:             StatePending,
	}
	if draft.Paid != nil {
		event.Paid = *draft.Paid
	}
	if draft.ParticipantLimit != nil {
		event.ParticipantLimit = *draft.ParticipantLimit
	}
	if draft.RequestModeration != nil {
		event.RequestModeration = *draft.RequestModeration
	}

	created, err := s.events.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info().Int64("event_id", created.ID).Int64("initiator_id", initiatorID).Msg("event created")
	return created, nil
}

// UpdateByInitiator applies an initiator edit. Only PENDING and CANCELED
// events may be edited; SEND_TO_REVIEW and CANCEL_REVIEW move the event
// between those two states.
func (s *Service) UpdateByInitiator(ctx context.Context, initiatorID, eventID int64, patch Patch) (*Event, error) {
	if err := s.users.Ensure(ctx, initiatorID); err != nil {
		return nil, err
	}
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != initiatorID {
		return nil, ErrNotFound
	}
	if event.State != StatePending && event.State != StateCanceled {
		return nil, ErrConflict
	}
	if patch.EventDate != nil && patch.EventDate.Before(s.now().Add(MinLeadTimeDraft)) {
		return nil, ValidationError{Field: "eventDate", Message: "must be at least 2 hours in the future"}
	}
	switch patch.StateAction {
	case "", ActionSendToReview, ActionCancelReview:
	default:
		return nil, ValidationError{Field: "stateAction", Message: "unknown action " + string(patch.StateAction)}
	}

	if err := s.applyPatch(ctx, event, patch); err != nil {
		return nil, err
	}
	switch patch.StateAction {
	case ActionSendToReview:
		event.State = StatePending
	case ActionCancelReview:
		event.State = StateCanceled
	}

	saved, err := s.events.Save(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	s.logger.Info().Int64("event_id", eventID).Int64("initiator_id", initiatorID).Msg("event updated by initiator")
	return saved, nil
}

// UpdateByAdmin applies an admin edit. PUBLISH_EVENT requires PENDING and
// stamps publishedOn exactly once; REJECT_EVENT cancels anything not yet
// published. The one-hour date guard runs on every admin edit against the
// stored event date, whether or not the patch changes it.
func (s *Service) UpdateByAdmin(ctx context.Context, eventID int64, patch Patch) (*Event, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	switch patch.StateAction {
	case "":
	case ActionPublish:
		if event.State != StatePending {
			return nil, ErrConflict
		}
		publishedOn := s.now()
		event.State = StatePublished
		event.PublishedOn = &publishedOn
	case ActionReject:
		if event.State == StatePublished {
			return nil, ErrConflict
		}
		event.State = StateCanceled
	default:
		return nil, ValidationError{Field: "stateAction", Message: "unknown action " + string(patch.StateAction)}
	}

	if event.EventDate.Before(s.now().Add(MinLeadTimePublish)) {
		return nil, ValidationError{Field: "eventDate", Message: "must be at least 1 hour in the future"}
	}

	if err := s.applyPatch(ctx, event, patch); err != nil {
		return nil, err
	}
	saved, err := s.events.Save(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	s.logger.Info().Int64("event_id", eventID).Str("state", string(saved.State)).Msg("event updated by admin")
	return saved, nil
}

// applyPatch copies the non-nil patch fields onto the event, resolving
// category and location references.
func (s *Service) applyPatch(ctx context.Context, event *Event, patch Patch) error {
	if patch.CategoryID != nil {
		if err := s.categories.Ensure(ctx, *patch.CategoryID); err != nil {
			return err
		}
		event.CategoryID = *patch.CategoryID
	}
	if patch.Location != nil {
		location, err := s.locations.GetOrCreate(ctx, patch.Location.Lat, patch.Location.Lon)
		if err != nil {
			return fmt.Errorf("resolve location: %w", err)
		}
		event.Location = location
	}
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Annotation != nil {
		event.Annotation = *patch.Annotation
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.EventDate != nil {
		event.EventDate = *patch.EventDate
	}
	if patch.Paid != nil {
		event.Paid = *patch.Paid
	}
	if patch.ParticipantLimit != nil {
		event.ParticipantLimit = *patch.ParticipantLimit
	}
	if patch.RequestModeration != nil {
		event.RequestModeration = *patch.RequestModeration
	}
	return nil
}

// ListByInitiator returns the initiator's own events, decorated.
func (s *Service) ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]WithStats, error) {
	if err := s.users.Ensure(ctx, initiatorID); err != nil {
		return nil, err
	}
	list, err := s.events.ListByInitiator(ctx, initiatorID, from, size)
	if err != nil {
		return nil, fmt.Errorf("list events by initiator: %w", err)
	}
	return s.decorate(ctx, list)
}

// GetByIDAndInitiator returns one of the initiator's own events, decorated.
func (s *Service) GetByIDAndInitiator(ctx context.Context, initiatorID, eventID int64) (*WithStats, error) {
	if err := s.users.Ensure(ctx, initiatorID); err != nil {
		return nil, err
	}
	event, err := s.events.GetByIDAndInitiator(ctx, eventID, initiatorID)
	if err != nil {
		return nil, err
	}
	decorated, err := s.decorate(ctx, []Event{*event})
	if err != nil {
		return nil, err
	}
	return &decorated[0], nil
}

// AdminList returns events matching the admin filters, decorated.
func (s *Service) AdminList(ctx context.Context, filters AdminFilters, from, size int) ([]WithStats, error) {
	list, err := s.events.ListAdmin(ctx, filters, from, size)
	if err != nil {
		return nil, fmt.Errorf("list events by admin: %w", err)
	}
	return s.decorate(ctx, list)
}

// PublicList returns published events matching the public filters. The page
// view is recorded against the stats collector best-effort. When no range is
// given, only upcoming events are returned.
func (s *Service) PublicList(ctx context.Context, filters PublicFilters, from, size int, uri, ip string) ([]WithStats, error) {
	s.views.RecordHit(ctx, uri, ip)
	if filters.RangeStart == nil {
		now := s.now()
		filters.RangeStart = &now
	}
	list, err := s.events.ListPublic(ctx, filters, from, size)
	if err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	decorated, err := s.decorate(ctx, list)
	if err != nil {
		return nil, err
	}
	if filters.OnlyAvailable {
		available := decorated[:0]
		for _, item := range decorated {
			if item.ParticipantLimit == 0 || int64(item.ParticipantLimit) > item.ConfirmedRequests {
				available = append(available, item)
			}
		}
		decorated = available
	}
	if filters.Sort == SortViews {
		sort.SliceStable(decorated, func(i, j int) bool {
			return decorated[i].Views > decorated[j].Views
		})
	}
	return decorated, nil
}

// PublicGet returns a published event by id, decorated, and records the
// view. Unpublished events are reported as absent.
func (s *Service) PublicGet(ctx context.Context, eventID int64, uri, ip string) (*WithStats, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	s.views.RecordHit(ctx, uri, ip)
	if event.State != StatePublished {
		return nil, ErrNotFound
	}
	decorated, err := s.decorate(ctx, []Event{*event})
	if err != nil {
		return nil, err
	}
	return &decorated[0], nil
}

// DecorateByIDs resolves events by id and decorates them. Used by the
// compilation read paths.
func (s *Service) DecorateByIDs(ctx context.Context, ids []int64) ([]WithStats, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	list, err := s.events.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find events by ids: %w", err)
	}
	return s.decorate(ctx, list)
}

// decorate attaches view and confirmed-request counts to a result set.
// Both lookups are batched: one stats query over the published subset's
// URIs and one grouped count over their ids. A stats failure degrades to
// zero views rather than failing the read.
func (s *Service) decorate(ctx context.Context, list []Event) ([]WithStats, error) {
	published := make([]Event, 0, len(list))
	for _, event := range list {
		if event.PublishedOn != nil {
			published = append(published, event)
		}
	}

	views := make(map[int64]int64)
	if len(published) > 0 {
		start := *published[0].PublishedOn
		uris := make([]string, 0, len(published))
		for _, event := range published {
			if event.PublishedOn.Before(start) {
				start = *event.PublishedOn
			}
			uris = append(uris, EventURI(event.ID))
		}
		byURI, err := s.views.Views(ctx, start, s.now(), uris, true)
		if err != nil {
			s.logger.Warn().Err(err).Msg("view stats unavailable, reporting zero views")
		}
		for uri, hits := range byURI {
			id, err := EventIDFromURI(uri)
			if err != nil {
				continue
			}
			views[id] = hits
		}
	}

	confirmed := make(map[int64]int64)
	if len(published) > 0 {
		ids := make([]int64, 0, len(published))
		for _, event := range published {
			ids = append(ids, event.ID)
		}
		counts, err := s.capacity.ConfirmedCounts(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("count confirmed requests: %w", err)
		}
		confirmed = counts
	}

	decorated := make([]WithStats, 0, len(list))
	for _, event := range list {
		decorated = append(decorated, WithStats{
			Event:             event,
			Views:             views[event.ID],
			ConfirmedRequests: confirmed[event.ID],
		})
	}
	return decorated, nil
}

// EventURI is the stats-collector resource identifier for an event.
func EventURI(eventID int64) string {
	return "/events/" + strconv.FormatInt(eventID, 10)
}

func EventIDFromURI(uri string) (int64, error) {
	idx := strings.LastIndexByte(uri, '/')
	if idx < 0 || idx == len(uri)-1 {
		return 0, fmt.Errorf("malformed event uri %q", uri)
	}
	return strconv.ParseInt(uri[idx+1:], 10, 64)
}
