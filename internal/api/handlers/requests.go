package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/domain/requests"
	"github.com/attendly/server/internal/metrics"
)

type RequestsHandler struct {
	Service *requests.Service
	Env     string
}

func NewRequestsHandler(service *requests.Service, env string) *RequestsHandler {
	return &RequestsHandler{Service: service, Env: env}
}

// Create handles POST /users/{userId}/requests?eventId=N.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}
	eventID, err := strconv.ParseInt(r.URL.Query().Get("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		writeBadRequest(w, r, events.ValidationError{Field: "eventId", Message: "must be a positive integer"}, h.Env)
		return
	}

	request, err := h.Service.Create(r.Context(), userID, eventID)
	if err != nil {
		metrics.AdmissionDecisions.WithLabelValues(admissionOutcome(err)).Inc()
		writeError(w, r, err, h.Env)
		return
	}
	metrics.AdmissionDecisions.WithLabelValues(admissionOutcome(nil, request.Status)).Inc()
	writeJSON(w, http.StatusCreated, requestFromDomain(request))
}

// List handles GET /users/{userId}/requests.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListByRequester(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, requestsFromDomain(list))
}

// Cancel handles PATCH /users/{userId}/requests/{requestId}/cancel.
func (h *RequestsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}
	requestID, err := pathID(r, "requestId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	request, err := h.Service.Cancel(r.Context(), userID, requestID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, requestFromDomain(request))
}

// ListForEvent handles GET /users/{userId}/events/{eventId}/requests.
func (h *RequestsHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListForEventOwner(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, requestsFromDomain(list))
}

// UpdateStatuses handles PATCH /users/{userId}/events/{eventId}/requests.
func (h *RequestsHandler) UpdateStatuses(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	var payload statusUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	desired, ok := requests.ParseStatus(payload.Status)
	if !ok {
		writeBadRequest(w, r, events.ValidationError{Field: "status", Message: "unknown status"}, h.Env)
		return
	}

	result, err := h.Service.UpdateStatuses(r.Context(), userID, eventID, payload.RequestIDs, desired)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, statusUpdateResponse{
		ConfirmedRequests: requestsFromDomain(result.Confirmed),
		RejectedRequests:  requestsFromDomain(result.Rejected),
	})
}

func admissionOutcome(err error, status ...requests.Status) string {
	switch {
	case err == nil && len(status) > 0 && status[0] == requests.StatusConfirmed:
		return "confirmed"
	case err == nil:
		return "pending"
	case errors.Is(err, events.ErrBusy):
		return "busy"
	case errors.Is(err, requests.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
