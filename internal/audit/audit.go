// Package audit emits structured audit records for admin-surface mutations.
// Records ride on the request-scoped logger so they carry the request id.
package audit

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Record logs one admin mutation. A zero resourceID means the resource did
// not exist yet (failed create). err is nil on success.
func Record(r *http.Request, action, resourceType string, resourceID int64, err error) {
	logger := zerolog.Ctx(r.Context())

	event := logger.Info()
	outcome := "success"
	if err != nil {
		event = logger.Warn().Err(err)
		outcome = "failure"
	}
	if resourceID != 0 {
		event = event.Str("resource_id", strconv.FormatInt(resourceID, 10))
	}
	event.
		Bool("audit", true).
		Str("action", action).
		Str("resource_type", resourceType).
		Str("outcome", outcome).
		Str("ip", clientAddr(r)).
		Msg("admin action")
}

func clientAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
