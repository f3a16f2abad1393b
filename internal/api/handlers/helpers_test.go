package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathID(t *testing.T) {
	r := httptest.NewRequest("GET", "/events/42", nil)
	r.SetPathValue("eventId", "42")

	id, err := pathID(r, "eventId")
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
}

func TestPathID_Invalid(t *testing.T) {
	for _, raw := range []string{"", "0", "-3", "abc"} {
		r := httptest.NewRequest("GET", "/events/x", nil)
		r.SetPathValue("eventId", raw)

		_, err := pathID(r, "eventId")
		require.Error(t, err, "raw %q", raw)
	}
}

func TestClientIP_ForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/events", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	require.Equal(t, "203.0.113.9", clientIP(r))
}

func TestClientIP_RemoteAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/events", nil)
	r.RemoteAddr = "192.0.2.4:51234"

	require.Equal(t, "192.0.2.4", clientIP(r))
}

func TestDecodeJSON_UnknownField(t *testing.T) {
	r := httptest.NewRequest("POST", "/admin/categories", strings.NewReader(`{"name":"concerts","rank":1}`))

	var payload newCategoryPayload
	require.Error(t, decodeJSON(r, &payload))
}

func TestDecodeJSON_Validates(t *testing.T) {
	r := httptest.NewRequest("POST", "/admin/categories", strings.NewReader(`{"name":""}`))

	var payload newCategoryPayload
	require.Error(t, decodeJSON(r, &payload))
}

func TestDecodeJSON_OK(t *testing.T) {
	r := httptest.NewRequest("POST", "/admin/categories", strings.NewReader(`{"name":"concerts"}`))

	var payload newCategoryPayload
	require.NoError(t, decodeJSON(r, &payload))
	require.Equal(t, "concerts", payload.Name)
}
