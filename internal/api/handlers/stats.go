package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/attendly/server/internal/metrics"
	"github.com/attendly/server/internal/stats"
)

type StatsHandler struct {
	Service *stats.Service
	Env     string
}

func NewStatsHandler(service *stats.Service, env string) *StatsHandler {
	return &StatsHandler{Service: service, Env: env}
}

// RecordHit handles POST /hit.
func (h *StatsHandler) RecordHit(w http.ResponseWriter, r *http.Request) {
	var payload hitPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	saved, err := h.Service.RecordHit(r.Context(), stats.EndpointHit{
		App:       payload.App,
		URI:       payload.URI,
		IP:        payload.IP,
		Timestamp: payload.Timestamp,
	})
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	metrics.EndpointHitsRecorded.Inc()
	writeJSON(w, http.StatusCreated, hitPayload{
		App:       saved.App,
		URI:       saved.URI,
		IP:        saved.IP,
		Timestamp: saved.Timestamp,
	})
}

// Stats handles GET /stats?start=&end=&uris=&unique=.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		writeError(w, r, stats.ValidationError{Field: "start", Message: "must be an RFC 3339 timestamp"}, h.Env)
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		writeError(w, r, stats.ValidationError{Field: "end", Message: "must be an RFC 3339 timestamp"}, h.Env)
		return
	}

	unique := false
	if raw := query.Get("unique"); raw != "" {
		unique, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, stats.ValidationError{Field: "unique", Message: "must be a boolean"}, h.Env)
			return
		}
	}

	list, err := h.Service.Stats(r.Context(), start, end, parseURIList(query["uris"]), unique)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	responses := make([]viewStatsResponse, 0, len(list))
	for _, item := range list {
		responses = append(responses, viewStatsResponse{App: item.App, URI: item.URI, Hits: item.Hits})
	}
	writeJSON(w, http.StatusOK, responses)
}

// parseURIList accepts both repeated uris parameters and comma-separated
// values.
func parseURIList(raw []string) []string {
	var uris []string
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			if item := strings.TrimSpace(part); item != "" {
				uris = append(uris, item)
			}
		}
	}
	return uris
}
