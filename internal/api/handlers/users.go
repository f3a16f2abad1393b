package handlers

import (
	"net/http"
	"strconv"

	"github.com/attendly/server/internal/api/pagination"
	"github.com/attendly/server/internal/audit"
	"github.com/attendly/server/internal/domain/users"
	"github.com/attendly/server/internal/sanitize"
)

type UsersHandler struct {
	Service *users.Service
	Env     string
}

func NewUsersHandler(service *users.Service, env string) *UsersHandler {
	return &UsersHandler{Service: service, Env: env}
}

// Create handles POST /admin/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload newUserPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	user, err := h.Service.Create(r.Context(), sanitize.Text(payload.Name), payload.Email)
	var createdID int64
	if user != nil {
		createdID = user.ID
	}
	audit.Record(r, "create_user", "user", createdID, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

// List handles GET /admin/users?ids=...
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	var ids []int64
	for _, raw := range r.URL.Query()["ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeBadRequest(w, r, err, h.Env)
			return
		}
		ids = append(ids, id)
	}

	list, err := h.Service.List(r.Context(), ids, page.From, page.Size)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	responses := make([]userResponse, 0, len(list))
	for _, user := range list {
		responses = append(responses, userResponse{ID: user.ID, Name: user.Name, Email: user.Email})
	}
	writeJSON(w, http.StatusOK, responses)
}

// Delete handles DELETE /admin/users/{userId}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	err = h.Service.Delete(r.Context(), userID)
	audit.Record(r, "delete_user", "user", userID, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
