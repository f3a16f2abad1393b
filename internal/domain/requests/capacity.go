package requests

import (
	"context"
	"fmt"
)

// InitialStatus is the admission default rule: unmoderated or unlimited
// events confirm immediately, everything else queues.
func InitialStatus(requestModeration bool, participantLimit int32) Status {
	if !requestModeration || participantLimit == 0 {
		return StatusConfirmed
	}
	return StatusPending
}

// FreeSeats is meaningful only for participantLimit > 0.
func FreeSeats(participantLimit int32, confirmedCount int64) int64 {
	return int64(participantLimit) - confirmedCount
}

// HasCapacity reports whether one more request could be confirmed.
// Unlimited events always have capacity.
func HasCapacity(participantLimit int32, confirmedCount int64) bool {
	return participantLimit == 0 || confirmedCount < int64(participantLimit)
}

// Accountant computes confirmed-request counts over the request store. It is
// stateless per call; correctness under concurrency comes from the event row
// lock held by the caller, not from the accountant.
type Accountant struct {
	requests Repository
}

func NewAccountant(requests Repository) *Accountant {
	return &Accountant{requests: requests}
}

func (a *Accountant) ConfirmedCount(ctx context.Context, eventID int64) (int64, error) {
	count, err := a.requests.CountByEventAndStatus(ctx, eventID, StatusConfirmed)
	if err != nil {
		return 0, fmt.Errorf("count confirmed requests: %w", err)
	}
	return count, nil
}

// ConfirmedCounts batches the confirmed count across a result set with a
// single grouped query. Events without confirmed requests are absent from
// the map.
func (a *Accountant) ConfirmedCounts(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	if len(eventIDs) == 0 {
		return map[int64]int64{}, nil
	}
	counts, err := a.requests.CountByEventsAndStatus(ctx, eventIDs, StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests by event: %w", err)
	}
	return counts, nil
}
