package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRecord_Success(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r := httptest.NewRequest("PATCH", "/admin/events/7", nil)
	r = r.WithContext(logger.WithContext(r.Context()))
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	Record(r, "publish_event", "event", 7, nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, true, entry["audit"])
	require.Equal(t, "publish_event", entry["action"])
	require.Equal(t, "event", entry["resource_type"])
	require.Equal(t, "7", entry["resource_id"])
	require.Equal(t, "success", entry["outcome"])
	require.Equal(t, "203.0.113.9", entry["ip"])
	require.Equal(t, "info", entry["level"])
}

func TestRecord_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r := httptest.NewRequest("DELETE", "/admin/users/3", nil)
	r = r.WithContext(logger.WithContext(r.Context()))
	r.RemoteAddr = "192.0.2.4:51234"

	Record(r, "delete_user", "user", 3, errors.New("user not found"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "failure", entry["outcome"])
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "192.0.2.4", entry["ip"])
	require.Equal(t, "user not found", entry["error"])
}
