package handlers

import (
	"errors"
	"net/http"

	"github.com/attendly/server/internal/api/pagination"
	"github.com/attendly/server/internal/api/problem"
	"github.com/attendly/server/internal/domain/categories"
	"github.com/attendly/server/internal/domain/comments"
	"github.com/attendly/server/internal/domain/compilations"
	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/domain/requests"
	"github.com/attendly/server/internal/domain/users"
	"github.com/attendly/server/internal/stats"
	"github.com/go-playground/validator/v10"
)

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var (
		eventsValidation events.ValidationError
		statsValidation  stats.ValidationError
		pageError        pagination.Error
		fieldErrors      validator.ValidationErrors
	)

	switch {
	case errors.As(err, &eventsValidation),
		errors.As(err, &statsValidation),
		errors.As(err, &pageError),
		errors.As(err, &fieldErrors):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env)

	case errors.Is(err, events.ErrBusy):
		w.Header().Set("Retry-After", "1")
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeBusy, "Try again later", err, env)

	case errors.Is(err, events.ErrNotFound),
		errors.Is(err, requests.ErrNotFound),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, categories.ErrNotFound),
		errors.Is(err, compilations.ErrNotFound),
		errors.Is(err, comments.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env)

	case errors.Is(err, events.ErrConflict),
		errors.Is(err, requests.ErrConflict),
		errors.Is(err, categories.ErrConflict),
		errors.Is(err, comments.ErrConflict),
		errors.Is(err, users.ErrEmailTaken):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Conflict", err, env)

	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
	}
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, err error, env string) {
	problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env)
}
