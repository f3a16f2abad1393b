package requests

import (
	"context"
	"errors"
	"time"

	"github.com/attendly/server/internal/domain/events"
)

// Status of a participation request. Once a request leaves PENDING it never
// returns to it.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusCanceled  Status = "CANCELED"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCanceled:
		return Status(value), true
	}
	return "", false
}

type Request struct {
	ID          int64
	EventID     int64
	RequesterID int64
	Created     time.Time
	Status      Status
}

// UpdateResult partitions a moderated batch by final status.
type UpdateResult struct {
	Confirmed []Request
	Rejected  []Request
}

var ErrNotFound = errors.New("request not found")

var ErrConflict = errors.New("request conflict")

type Repository interface {
	Create(ctx context.Context, request *Request) (*Request, error)
	Get(ctx context.Context, id int64) (*Request, error)
	// FindByIDs returns the matching requests in the order of ids; absent
	// ids are skipped.
	FindByIDs(ctx context.Context, ids []int64) ([]Request, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]Request, error)
	ListByEventAndInitiator(ctx context.Context, eventID, initiatorID int64) ([]Request, error)
	// ActiveExists reports whether the requester holds a non-CANCELED
	// request against the event.
	ActiveExists(ctx context.Context, eventID, requesterID int64) (bool, error)
	CountByEventAndStatus(ctx context.Context, eventID int64, status Status) (int64, error)
	CountByEventsAndStatus(ctx context.Context, eventIDs []int64, status Status) (map[int64]int64, error)
	Save(ctx context.Context, request *Request) (*Request, error)
	// SaveAll persists the batch atomically; callers run it inside a
	// transaction.
	SaveAll(ctx context.Context, batch []Request) error
}

// UserDirectory reports whether a user exists.
type UserDirectory interface {
	Ensure(ctx context.Context, userID int64) error
}

// Store groups the repositories the admission engine touches. WithTx runs
// fn in a single transaction; row locks taken through the transactional
// Store are held until it commits or rolls back.
type Store interface {
	Events() events.Repository
	Requests() Repository
	Users() UserDirectory
	WithTx(ctx context.Context, fn func(context.Context, Store) error) error
}
