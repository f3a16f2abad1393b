package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/domain/requests"
	"github.com/attendly/server/internal/domain/users"
	"github.com/attendly/server/internal/stats"
)

func responseFor(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/events", nil)
	writeError(w, r, err, "test")
	return w
}

func TestWriteError_Validation(t *testing.T) {
	for _, err := range []error{
		events.ValidationError{Field: "eventDate", Message: "must be at least 2 hours in the future"},
		stats.ValidationError{Field: "start", Message: "must not be after end"},
	} {
		w := responseFor(t, err)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	}
}

func TestWriteError_NotFound(t *testing.T) {
	for _, err := range []error{events.ErrNotFound, requests.ErrNotFound, users.ErrNotFound} {
		w := responseFor(t, err)
		require.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestWriteError_Conflict(t *testing.T) {
	for _, err := range []error{
		events.ErrConflict,
		fmt.Errorf("%w: participant limit reached", requests.ErrConflict),
		users.ErrEmailTaken,
	} {
		w := responseFor(t, err)
		require.Equal(t, http.StatusConflict, w.Code)
	}
}

func TestWriteError_BusySetsRetryAfter(t *testing.T) {
	w := responseFor(t, events.ErrBusy)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, float64(http.StatusServiceUnavailable), body["status"])
}

func TestWriteError_Default(t *testing.T) {
	w := responseFor(t, fmt.Errorf("pool exhausted"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
