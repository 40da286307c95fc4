package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"eventhub/internal/adapters/viewcache"
	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsClient struct {
	mu       sync.Mutex
	hits     []domain.EndpointHit
	hitErr   error
	stats    []domain.ViewStats
	queryErr error
	queries  [][]string
}

func (f *fakeStatsClient) RecordHit(ctx context.Context, hit domain.EndpointHit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits = append(f.hits, hit)
	return f.hitErr
}

func (f *fakeStatsClient) QueryViews(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]domain.ViewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, uris)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.stats, nil
}

func newTestAggregator(stats domain.StatsClient) (*ViewsAggregator, *viewcache.Cache) {
	cache := viewcache.New()
	agg := NewViewsAggregator(stats, cache, "eventhub", time.Second, testLogger())
	agg.now = fixedClock
	return agg, cache
}

func TestViewsAggregator_RecordHit(t *testing.T) {
	stats := &fakeStatsClient{}
	agg, cache := newTestAggregator(stats)

	agg.RecordHit(context.Background(), "/events/3", 3, "10.0.0.1")
	agg.RecordHit(context.Background(), "/events", 0, "10.0.0.1")
	agg.Close()

	require.Len(t, stats.hits, 2)
	assert.ElementsMatch(t, []string{"/events/3", "/events"}, []string{stats.hits[0].URI, stats.hits[1].URI})
	for _, h := range stats.hits {
		assert.Equal(t, "eventhub", h.App)
		assert.Equal(t, "10.0.0.1", h.IP)
		assert.Equal(t, testNow, h.Timestamp)
	}
	assert.Equal(t, 1, cache.Count(3))
	assert.Equal(t, 0, cache.Count(0))
}

func TestViewsAggregator_RecordHitSurvivesCanceledRequest(t *testing.T) {
	stats := &fakeStatsClient{hitErr: errors.New("boom")}
	agg, cache := newTestAggregator(stats)

	ctx, cancel := context.WithCancel(context.Background())
	agg.RecordHit(ctx, "/events/1", 1, "10.0.0.9")
	cancel()
	agg.Close()

	assert.Len(t, stats.hits, 1)
	assert.Equal(t, 1, cache.Count(1))
}

func TestViewsAggregator_ViewsFor(t *testing.T) {
	events := []*domain.Event{{ID: 1}, {ID: 2}}

	t.Run("takes the larger of both counts", func(t *testing.T) {
		stats := &fakeStatsClient{stats: []domain.ViewStats{{App: "eventhub", URI: "/events/1", Hits: 7}}}
		agg, cache := newTestAggregator(stats)
		cache.Add(1, "a")
		cache.Add(2, "a")
		cache.Add(2, "b")

		views := agg.ViewsFor(context.Background(), events, testNow)
		assert.Equal(t, map[int64]int64{1: 7, 2: 2}, views)
		require.Len(t, stats.queries, 1)
		assert.Equal(t, []string{"/events/1", "/events/2"}, stats.queries[0])
	})

	t.Run("stats outage falls back to local counts", func(t *testing.T) {
		stats := &fakeStatsClient{queryErr: domain.ErrUnavailable}
		agg, cache := newTestAggregator(stats)
		cache.Add(1, "a")
		cache.Add(1, "b")

		views := agg.ViewsFor(context.Background(), events, testNow)
		assert.Equal(t, int64(2), views[1])
		assert.Equal(t, int64(0), views[2])
	})

	t.Run("no events no query", func(t *testing.T) {
		stats := &fakeStatsClient{}
		agg, _ := newTestAggregator(stats)
		assert.Empty(t, agg.ViewsFor(context.Background(), nil, testNow))
		assert.Empty(t, stats.queries)
	})
}

func TestViewsAggregator_RecordHitAfterClose(t *testing.T) {
	stats := &fakeStatsClient{}
	agg, cache := newTestAggregator(stats)
	agg.Close()

	require.NotPanics(t, func() {
		agg.RecordHit(context.Background(), "/events/5", 5, "10.0.0.3")
	})
	agg.Close()

	assert.Empty(t, stats.hits, "no hit is sent once closed")
	assert.Equal(t, 1, cache.Count(5), "the local count is still kept")
}

func TestViewsAggregator_CloseWhileRecording(t *testing.T) {
	stats := &fakeStatsClient{}
	agg, _ := newTestAggregator(stats)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg.RecordHit(context.Background(), "/events", 0, "10.0.0."+strconv.Itoa(i))
		}()
	}
	agg.Close()
	wg.Wait()
	agg.Close()

	stats.mu.Lock()
	defer stats.mu.Unlock()
	assert.LessOrEqual(t, len(stats.hits), 50)
}
