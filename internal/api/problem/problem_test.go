package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrite_DevelopmentIncludesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/events/5", nil)
	rec := httptest.NewRecorder()

	Write(rec, req, http.StatusNotFound, TypeNotFound, "Not found", errors.New("event 5 missing"), "development")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, TypeNotFound, body.Type)
	require.Equal(t, "event 5 missing", body.Detail)
	require.Equal(t, "/admin/events/5", body.Instance)
}

func TestWrite_ProductionHidesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()

	Write(rec, req, http.StatusInternalServerError, TypeServerError, "Server error", errors.New("pool exhausted"), "production")

	var body ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, http.StatusText(http.StatusInternalServerError), body.Detail)
}

func TestWrite_Options(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/admin/users", nil)
	rec := httptest.NewRecorder()

	Write(rec, req, http.StatusBadRequest, TypeValidation, "Invalid request", nil, "test",
		WithDetail("email is malformed"),
		WithErrors(map[string]interface{}{"email": "malformed"}),
	)

	var body ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "email is malformed", body.Detail)
	require.Contains(t, body.Errors, "email")
}
