package handlers

import (
	"net/http"

	"github.com/attendly/server/internal/api/pagination"
	"github.com/attendly/server/internal/audit"
	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

// AdminList handles GET /admin/events.
func (h *EventsHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	filters, err := events.ParseAdminFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.AdminList(r.Context(), filters, page.From, page.Size)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, eventsFromStats(list))
}

// AdminUpdate handles PATCH /admin/events/{eventId}.
func (h *EventsHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	var payload updateEventPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.UpdateByAdmin(r.Context(), eventID, payload.toPatch())
	audit.Record(r, "update_event", "event", eventID, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if payload.StateAction != "" {
		metrics.EventStateTransitions.WithLabelValues(payload.StateAction).Inc()
	}
	writeJSON(w, http.StatusOK, eventFromDomain(event))
}

// Create handles POST /users/{userId}/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	var payload newEventPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), userID, payload.toDraft())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, eventFromDomain(event))
}

// ListByInitiator handles GET /users/{userId}/events.
func (h *EventsHandler) ListByInitiator(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListByInitiator(r.Context(), userID, page.From, page.Size)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, eventsFromStats(list))
}

// GetByInitiator handles GET /users/{userId}/events/{eventId}.
func (h *EventsHandler) GetByInitiator(w http.ResponseWriter, r *http.Request) {
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

	event, err := h.Service.GetByIDAndInitiator(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, eventFromStats(*event))
}

// UpdateByInitiator handles PATCH /users/{userId}/events/{eventId}.
func (h *EventsHandler) UpdateByInitiator(w http.ResponseWriter, r *http.Request) {
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

	var payload updateEventPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.UpdateByInitiator(r.Context(), userID, eventID, payload.toPatch())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if payload.StateAction != "" {
		metrics.EventStateTransitions.WithLabelValues(payload.StateAction).Inc()
	}
	writeJSON(w, http.StatusOK, eventFromDomain(event))
}

// PublicList handles GET /events.
func (h *EventsHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	filters, err := events.ParsePublicFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.PublicList(r.Context(), filters, page.From, page.Size, r.URL.Path, clientIP(r))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, eventsFromStats(list))
}

// PublicGet handles GET /events/{eventId}.
func (h *EventsHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	event, err := h.Service.PublicGet(r.Context(), eventID, r.URL.Path, clientIP(r))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, eventFromStats(*event))
}
