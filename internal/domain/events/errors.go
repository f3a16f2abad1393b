package events

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("event not found")

// ErrConflict marks an illegal state transition or an edit in a state that
// forbids it.
var ErrConflict = errors.New("event state conflict")

// ErrBusy is returned when the per-event row lock cannot be acquired within
// the configured wait bound. Callers should retry later.
var ErrBusy = errors.New("event is locked by another operation")

// ValidationError marks bad input: date-guard violations, malformed enums,
// inverted ranges.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
