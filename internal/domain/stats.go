package domain

import (
	"context"
	"time"
)

// StatsTimeLayout is the timestamp format used on the stats service wire.
const StatsTimeLayout = "2006-01-02 15:04:05"

// EndpointHit is one request to a public endpoint, as recorded by the stats service.
type EndpointHit struct {
	App       string    `json:"app"`
	URI       string    `json:"uri"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"-"`
}

// ViewStats is the aggregated hit count of one URI.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// StatsClient is the port to the external view-statistics service.
type StatsClient interface {
	RecordHit(ctx context.Context, hit EndpointHit) error
	QueryViews(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error)
}

// ViewFallback tracks, per event, the client addresses seen by this process.
// It is an approximation used when the stats service cannot answer.
type ViewFallback interface {
	// Add records addr for the event and returns the number of distinct addresses seen for it.
	Add(eventID int64, addr string) int
	Count(eventID int64) int
}

// ViewsAggregator produces view counts that survive a degraded stats service.
type ViewsAggregator interface {
	// RecordHit notes a view of uri by clientAddr. eventID is zero for non-event pages.
	RecordHit(ctx context.Context, uri string, eventID int64, clientAddr string)
	// ViewsFor returns max(stats service count, local fallback count) per event id.
	ViewsFor(ctx context.Context, events []*Event, asOf time.Time) map[int64]int64
}
