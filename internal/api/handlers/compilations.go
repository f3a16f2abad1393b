package handlers

import (
	"net/http"
	"strconv"

	"github.com/attendly/server/internal/api/pagination"
	"github.com/attendly/server/internal/audit"
	"github.com/attendly/server/internal/domain/compilations"
	"github.com/attendly/server/internal/sanitize"
)

type CompilationsHandler struct {
	Service *compilations.Service
	Env     string
}

func NewCompilationsHandler(service *compilations.Service, env string) *CompilationsHandler {
	return &CompilationsHandler{Service: service, Env: env}
}

// Create handles POST /admin/compilations.
func (h *CompilationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload newCompilationPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	created, err := h.Service.Create(r.Context(), compilations.NewCompilation{
		Title:    sanitize.Text(payload.Title),
		Pinned:   payload.Pinned,
		EventIDs: payload.Events,
	})
	var createdID int64
	if created != nil {
		createdID = created.ID
	}
	audit.Record(r, "create_compilation", "compilation", createdID, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, compilationFromDomain(created))
}

// Update handles PATCH /admin/compilations/{compId}.
func (h *CompilationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	compID, err := pathID(r, "compId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}
	var payload updateCompilationPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	updated, err := h.Service.Update(r.Context(), compID, compilations.Patch{
		Title:    sanitizedPtr(payload.Title, sanitize.Text),
		Pinned:   payload.Pinned,
		EventIDs: payload.Events,
	})
	audit.Record(r, "update_compilation", "compilation", compID, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, compilationFromDomain(updated))
}

// Delete handles DELETE /admin/compilations/{compId}.
func (h *CompilationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	compID, err := pathID(r, "compId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	err = h.Service.Delete(r.Context(), compID)
	audit.Record(r, "delete_compilation", "compilation", compID, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /compilations?pinned=.
func (h *CompilationsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	var pinned *bool
	if raw := r.URL.Query().Get("pinned"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			writeBadRequest(w, r, err, h.Env)
			return
		}
		pinned = &value
	}

	list, err := h.Service.ListByPinned(r.Context(), pinned, page.From, page.Size)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	responses := make([]compilationResponse, 0, len(list))
	for i := range list {
		responses = append(responses, compilationFromDomain(&list[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

// Get handles GET /compilations/{compId}.
func (h *CompilationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	compID, err := pathID(r, "compId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	item, err := h.Service.Get(r.Context(), compID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, compilationFromDomain(item))
}
