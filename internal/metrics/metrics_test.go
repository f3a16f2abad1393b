package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	Init("v1.0.0", "abc123", "2026-01-30")

	require.NotZero(t, testutil.CollectAndCount(AppInfo))
}

func TestHTTPMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wrapped := HTTPMiddleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotZero(t, testutil.CollectAndCount(HTTPRequestsTotal))
	require.NotZero(t, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestAdmissionDecisionsLabels(t *testing.T) {
	AdmissionDecisions.WithLabelValues("confirmed").Inc()
	AdmissionDecisions.WithLabelValues("busy").Inc()

	require.GreaterOrEqual(t, testutil.CollectAndCount(AdmissionDecisions), 2)
}
