package services

import (
	"context"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

// ViewsAggregator combines the stats service counts with the local fallback cache.
// Hits are sent in the background; Close waits for the ones still in flight and drops later ones.
type ViewsAggregator struct {
	stats    domain.StatsClient
	fallback domain.ViewFallback
	app      string
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
	inflight background
}

var _ domain.ViewsAggregator = (*ViewsAggregator)(nil)

func NewViewsAggregator(stats domain.StatsClient, fallback domain.ViewFallback, app string, timeout time.Duration, logger *slog.Logger) *ViewsAggregator {
	return &ViewsAggregator{
		stats:    stats,
		fallback: fallback,
		app:      app,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

func (a *ViewsAggregator) RecordHit(ctx context.Context, uri string, eventID int64, clientAddr string) {
	if eventID != 0 {
		a.fallback.Add(eventID, clientAddr)
	}
	hit := domain.EndpointHit{App: a.app, URI: uri, IP: clientAddr, Timestamp: a.now()}

	started := a.inflight.Go(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.stats.RecordHit(ctx, hit); err != nil {
			a.logger.WarnContext(ctx, "record hit failed", "uri", uri, "err", err)
		}
	})
	if !started {
		a.logger.WarnContext(ctx, "hit dropped after shutdown", "uri", uri)
	}
}

func (a *ViewsAggregator) ViewsFor(ctx context.Context, events []*domain.Event, asOf time.Time) map[int64]int64 {
	views := make(map[int64]int64, len(events))
	if len(events) == 0 {
		return views
	}
	uris := make([]string, 0, len(events))
	for _, e := range events {
		uris = append(uris, domain.EventURI(e.ID))
	}

	external := make(map[string]int64, len(events))
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	stats, err := a.stats.QueryViews(ctx, time.Unix(0, 0).UTC(), asOf, uris, true)
	if err != nil {
		a.logger.WarnContext(ctx, "query views failed, using local counts", "events", len(events), "err", err)
	}
	for _, st := range stats {
		external[st.URI] += st.Hits
	}

	for _, e := range events {
		views[e.ID] = max(external[domain.EventURI(e.ID)], int64(a.fallback.Count(e.ID)))
	}
	return views
}

// Close blocks until every background hit has finished.
func (a *ViewsAggregator) Close() {
	a.inflight.Close()
}
