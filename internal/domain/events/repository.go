package events

import (
	"context"
	"time"
)

// State is the moderation state of an event.
type State string

const (
	StatePending   State = "PENDING"
	StatePublished State = "PUBLISHED"
	StateCanceled  State = "CANCELED"
)

func ParseState(value string) (State, bool) {
	switch State(value) {
	case StatePending, StatePublished, StateCanceled:
		return State(value), true
	}
	return "", false
}

// StateAction is a requested state transition carried on an edit.
type StateAction string

const (
	// Initiator actions.
	ActionSendToReview StateAction = "SEND_TO_REVIEW"
	ActionCancelReview StateAction = "CANCEL_REVIEW"

	// Admin actions.
	ActionPublish StateAction = "PUBLISH_EVENT"
	ActionReject  StateAction = "REJECT_EVENT"
)

// Location is a shared geo point, deduplicated by exact coordinates.
type Location struct {
	ID  int64
	Lat float64
	Lon float64
}

type Event struct {
	ID                int64
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	InitiatorID       int64
	Location          Location
	EventDate         time.Time
	CreatedOn         time.Time
	PublishedOn       *time.Time
	Paid              bool
	ParticipantLimit  int32
	RequestModeration bool
	State             State
}

// WithStats is an event decorated with the two derived read-path fields.
type WithStats struct {
	Event
	Views             int64
	ConfirmedRequests int64
}

// NewEvent carries the initiator-supplied fields of a draft.
// Optional fields default to paid=false, participantLimit=0,
// requestModeration=true when nil.
type NewEvent struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	EventDate         time.Time
	Lat               float64
	Lon               float64
	Paid              *bool
	ParticipantLimit  *int32
	RequestModeration *bool
}

// LatLon identifies a location in a patch.
type LatLon struct {
	Lat float64
	Lon float64
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	EventDate         *time.Time
	Location          *LatLon
	Paid              *bool
	ParticipantLimit  *int32
	RequestModeration *bool
	StateAction       StateAction
}

type AdminFilters struct {
	UserIDs     []int64
	States      []State
	CategoryIDs []int64
	RangeStart  *time.Time
	RangeEnd    *time.Time
}

type Sort string

const (
	SortNone      Sort = ""
	SortEventDate Sort = "EVENT_DATE"
	SortViews     Sort = "VIEWS"
)

type PublicFilters struct {
	Text          string
	CategoryIDs   []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          Sort
}

type Repository interface {
	Create(ctx context.Context, event *Event) (*Event, error)
	Get(ctx context.Context, id int64) (*Event, error)
	// GetForUpdate locks the event row for the remainder of the enclosing
	// transaction. Returns ErrBusy when the lock wait exceeds the configured
	// bound, ErrNotFound when the row is absent.
	GetForUpdate(ctx context.Context, id int64) (*Event, error)
	Save(ctx context.Context, event *Event) (*Event, error)
	FindByIDs(ctx context.Context, ids []int64) ([]Event, error)
	GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*Event, error)
	ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]Event, error)
	ListAdmin(ctx context.Context, filters AdminFilters, from, size int) ([]Event, error)
	// ListPublic only ever returns PUBLISHED events.
	ListPublic(ctx context.Context, filters PublicFilters, from, size int) ([]Event, error)
}

type LocationRepository interface {
	// GetOrCreate resolves a location by exact (lat, lon) match, creating it
	// when absent.
	GetOrCreate(ctx context.Context, lat, lon float64) (Location, error)
}

// UserDirectory reports whether a user exists; Ensure returns the user
// domain's not-found error otherwise.
type UserDirectory interface {
	Ensure(ctx context.Context, userID int64) error
}

// CategoryDirectory reports whether a category exists.
type CategoryDirectory interface {
	Ensure(ctx context.Context, categoryID int64) error
}

// CapacityCounter exposes confirmed-request counts, batched across a result
// set with a single grouped query.
type CapacityCounter interface {
	ConfirmedCount(ctx context.Context, eventID int64) (int64, error)
	ConfirmedCounts(ctx context.Context, eventIDs []int64) (map[int64]int64, error)
}

// ViewCounter is the stats-collector contract. RecordHit is best-effort and
// must never fail or block the caller's read path.
type ViewCounter interface {
	RecordHit(ctx context.Context, uri, ip string)
	Views(ctx context.Context, start, end time.Time, uris []string, uniqueByIP bool) (map[string]int64, error)
}
