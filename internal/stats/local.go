package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LocalCollector adapts the in-process Service to the view-counter contract
// the event read paths consume. Hit recording is best-effort: failures are
// logged and swallowed so the read path never depends on the collector.
type LocalCollector struct {
	svc    *Service
	app    string
	now    func() time.Time
	logger zerolog.Logger
}

func NewLocalCollector(svc *Service, app string, logger zerolog.Logger) *LocalCollector {
	return &LocalCollector{
		svc:    svc,
		app:    app,
		now:    time.Now,
		logger: logger.With().Str("component", "stats_local").Logger(),
	}
}

func (c *LocalCollector) RecordHit(ctx context.Context, uri, ip string) {
	_, err := c.svc.RecordHit(ctx, EndpointHit{
		App:       c.app,
		URI:       uri,
		IP:        ip,
		Timestamp: c.now(),
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("uri", uri).Msg("hit not recorded")
	}
}

func (c *LocalCollector) Views(ctx context.Context, start, end time.Time, uris []string, uniqueByIP bool) (map[string]int64, error) {
	list, err := c.svc.Stats(ctx, start, end, uris, uniqueByIP)
	if err != nil {
		return nil, err
	}
	views := make(map[string]int64, len(list))
	for _, item := range list {
		views[item.URI] = item.Hits
	}
	return views, nil
}
