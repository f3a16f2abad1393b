package handlers

import (
	"net/http"
	"strconv"

	"github.com/attendly/server/internal/api/pagination"
	"github.com/attendly/server/internal/audit"
	"github.com/attendly/server/internal/domain/comments"
	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/sanitize"
)

type CommentsHandler struct {
	Service *comments.Service
	Env     string
}

func NewCommentsHandler(service *comments.Service, env string) *CommentsHandler {
	return &CommentsHandler{Service: service, Env: env}
}

func commentFromDomain(comment *comments.Comment) commentResponse {
	return commentResponse{
		ID:      comment.ID,
		Event:   comment.EventID,
		Author:  comment.AuthorID,
		Message: comment.Message,
		Created: comment.Created,
	}
}

func commentsFromDomain(list []comments.Comment) []commentResponse {
	responses := make([]commentResponse, 0, len(list))
	for i := range list {
		responses = append(responses, commentFromDomain(&list[i]))
	}
	return responses
}

// Create handles POST /users/{userId}/comments?eventId=N.
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var payload newCommentPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	comment, err := h.Service.Create(r.Context(), userID, eventID, sanitize.Text(payload.Message))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, commentFromDomain(comment))
}

// Update handles PATCH /users/{userId}/comments/{commentId}.
func (h *CommentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	var payload newCommentPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	comment, err := h.Service.Update(r.Context(), userID, commentID, sanitize.Text(payload.Message))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, commentFromDomain(comment))
}

// ListByAuthor handles GET /users/{userId}/comments.
func (h *CommentsHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListByAuthor(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, commentsFromDomain(list))
}

// GetByAuthor handles GET /users/{userId}/comments/{commentId}.
func (h *CommentsHandler) GetByAuthor(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	comment, err := h.Service.GetByAuthor(r.Context(), userID, commentID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, commentFromDomain(comment))
}

// DeleteByAuthor handles DELETE /users/{userId}/comments/{commentId}.
func (h *CommentsHandler) DeleteByAuthor(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	if err := h.Service.DeleteByAuthor(r.Context(), userID, commentID); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteByAdmin handles DELETE /admin/comments/{commentId}.
func (h *CommentsHandler) DeleteByAdmin(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}

	err = h.Service.DeleteByAdmin(r.Context(), commentID)
	audit.Record(r, "delete_comment", "comment", commentID, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListByEvent handles GET /events/{eventId}/comments.
func (h *CommentsHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeBadRequest(w, r, err, h.Env)
		return
	}
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.ListByEvent(r.Context(), eventID, page.From, page.Size)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, commentsFromDomain(list))
}
