package handlers

import (
	"net/http"

	"github.com/attendly/server/internal/api/pagination"
	"github.com/attendly/server/internal/audit"
	"github.com/attendly/server/internal/domain/categories"
	"github.com/attendly/server/internal/sanitize"
)

type CategoriesHandler struct {
	Service *categories.Service
	Env     string
}

func NewCategoriesHandler(service *categories.Service, env string) *CategoriesHandler {
	return &CategoriesHandler{Service: service, Env: env}
}

// Create handles POST /admin/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload newCategoryPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	category, err := h.Service.Create(r.Context(), sanitize.Text(payload.Name))
	var createdID int64
	if category != nil {
		createdID = category.ID
	}
	audit.Record(r, "create_category", "category", createdID, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{ID: category.ID, Name: category.Name})
}

// Update handles PATCH /admin/categories/{catId}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	catID, err := pathID(r, "catId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}
	var payload newCategoryPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	category, err := h.Service.Update(r.Context(), catID, sanitize.Text(payload.Name))
	audit.Record(r, "update_category", "category", catID, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{ID: category.ID, Name: category.Name})
}

// Delete handles DELETE /admin/categories/{catId}.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	catID, err := pathID(r, "catId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	err = h.Service.Delete(r.Context(), catID)
	audit.Record(r, "delete_category", "category", catID, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.List(r.Context(), page.From, page.Size)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	responses := make([]categoryResponse, 0, len(list))
	for _, category := range list {
		responses = append(responses, categoryResponse{ID: category.ID, Name: category.Name})
	}
	writeJSON(w, http.StatusOK, responses)
}

// Get handles GET /categories/{catId}.
func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	catID, err := pathID(r, "catId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	category, err := h.Service.Get(r.Context(), catID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{ID: category.ID, Name: category.Name})
}
