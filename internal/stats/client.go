package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to a remote stats collector over HTTP. It satisfies the same
// view-counter contract as LocalCollector; hit recording is fire-and-forget.
type Client struct {
	baseURL string
	app     string
	http    *http.Client
	now     func() time.Time
	logger  zerolog.Logger
}

type hitPayload struct {
	App       string    `json:"app"`
	URI       string    `json:"uri"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}

type viewStatsPayload struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

func NewClient(baseURL, app string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		app:     app,
		http:    &http.Client{Timeout: 5 * time.Second},
		now:     time.Now,
		logger:  logger.With().Str("component", "stats_client").Logger(),
	}
}

// RecordHit posts the hit and logs any failure without propagating it: a
// collector outage must not fail the read path that triggered the hit.
func (c *Client) RecordHit(ctx context.Context, uri, ip string) {
	payload, err := json.Marshal(hitPayload{App: c.app, URI: uri, IP: ip, Timestamp: c.now()})
	if err != nil {
		c.logger.Warn().Err(err).Str("uri", uri).Msg("hit not recorded")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(payload))
	if err != nil {
		c.logger.Warn().Err(err).Str("uri", uri).Msg("hit not recorded")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("uri", uri).Msg("hit not recorded")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn().Int("status", resp.StatusCode).Str("uri", uri).Msg("hit not recorded")
	}
}

func (c *Client) Views(ctx context.Context, start, end time.Time, uris []string, uniqueByIP bool) (map[string]int64, error) {
	query := url.Values{}
	query.Set("start", start.Format(time.RFC3339))
	query.Set("end", end.Format(time.RFC3339))
	if len(uris) > 0 {
		query.Set("uris", strings.Join(uris, ","))
	}
	query.Set("unique", strconv.FormatBool(uniqueByIP))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query stats: unexpected status %d", resp.StatusCode)
	}

	var list []viewStatsPayload
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode stats response: %w", err)
	}
	views := make(map[string]int64, len(list))
	for _, item := range list {
		views[item.URI] = item.Hits
	}
	return views, nil
}
