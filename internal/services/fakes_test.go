package services

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"eventhub/internal/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const defaultTestTimeout = 5 * time.Second

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fixedClock() time.Time { return testNow }

// memStore is an in-memory database shared by the fake repositories and the tx runner.
// A single mutex stands in for the event row lock; a failed transaction restores the snapshot.
type memStore struct {
	mu            sync.Mutex
	events        map[int64]*domain.Event
	requests      map[int64]*domain.ParticipationRequest
	users         map[int64]*domain.User
	categories    map[int64]*domain.Category
	nextEventID   int64
	nextRequestID int64
	txCount       int
}

func newMemStore() *memStore {
	return &memStore{
		events:     make(map[int64]*domain.Event),
		requests:   make(map[int64]*domain.ParticipationRequest),
		users:      make(map[int64]*domain.User),
		categories: map[int64]*domain.Category{1: {ID: 1, Name: "Meetups"}},
	}
}

func (m *memStore) addUser(id int64, name string) {
	m.users[id] = &domain.User{ID: id, Name: name, Email: name + "@example.com"}
}

func (m *memStore) addEvent(e domain.Event) *domain.Event {
	m.nextEventID++
	e.ID = m.nextEventID
	if e.CategoryID == 0 {
		e.CategoryID = 1
	}
	if e.EventDate.IsZero() {
		e.EventDate = testNow.Add(72 * time.Hour)
	}
	m.events[e.ID] = &e
	return &e
}

func (m *memStore) addRequest(eventID, requesterID int64, status domain.RequestStatus) *domain.ParticipationRequest {
	m.nextRequestID++
	r := &domain.ParticipationRequest{ID: m.nextRequestID, EventID: eventID, RequesterID: requesterID, Status: status, Created: testNow}
	m.requests[r.ID] = r
	if status == domain.RequestConfirmed {
		m.events[eventID].ConfirmedRequests++
	}
	return r
}

func (m *memStore) event(id int64) domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.events[id]
}

func (m *memStore) request(id int64) domain.ParticipationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.requests[id]
}

func (m *memStore) countStatus(eventID int64, status domain.RequestStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if r.EventID == eventID && r.Status == status {
			n++
		}
	}
	return n
}

func copyRequests(src map[int64]*domain.ParticipationRequest) map[int64]*domain.ParticipationRequest {
	dst := make(map[int64]*domain.ParticipationRequest, len(src))
	for id, r := range src {
		c := *r
		dst[id] = &c
	}
	return dst
}

func copyEvents(src map[int64]*domain.Event) map[int64]*domain.Event {
	dst := make(map[int64]*domain.Event, len(src))
	for id, e := range src {
		c := *e
		dst[id] = &c
	}
	return dst
}

func (m *memStore) InEventTx(ctx context.Context, eventID int64, fn func(ctx context.Context, tx domain.EventTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	e, ok := m.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	savedEvents, savedRequests, savedNext := copyEvents(m.events), copyRequests(m.requests), m.nextRequestID
	locked := *e
	if err := fn(ctx, &memTx{store: m, event: &locked}); err != nil {
		m.events, m.requests, m.nextRequestID = savedEvents, savedRequests, savedNext
		return err
	}
	return nil
}

type memTx struct {
	store *memStore
	event *domain.Event
}

func (t *memTx) Event() *domain.Event { return t.event }

func (t *memTx) CountConfirmed(ctx context.Context) (int, error) {
	n := 0
	for _, r := range t.store.requests {
		if r.EventID == t.event.ID && r.Status == domain.RequestConfirmed {
			n++
		}
	}
	return n, nil
}

func (t *memTx) sortedRequests(keep func(r *domain.ParticipationRequest) bool) []*domain.ParticipationRequest {
	out := make([]*domain.ParticipationRequest, 0)
	for _, id := range slices.Sorted(maps.Keys(t.store.requests)) {
		r := t.store.requests[id]
		if r.EventID == t.event.ID && keep(r) {
			c := *r
			out = append(out, &c)
		}
	}
	return out
}

func (t *memTx) FindRequests(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	return t.sortedRequests(func(r *domain.ParticipationRequest) bool { return slices.Contains(ids, r.ID) }), nil
}

func (t *memTx) ListPending(ctx context.Context) ([]*domain.ParticipationRequest, error) {
	return t.sortedRequests(func(r *domain.ParticipationRequest) bool { return r.Status == domain.RequestPending }), nil
}

func (t *memTx) HasActiveRequest(ctx context.Context, requesterID int64) (bool, error) {
	for _, r := range t.store.requests {
		if r.EventID == t.event.ID && r.RequesterID == requesterID && r.Status != domain.RequestCanceled {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) GetRequest(ctx context.Context, requestID int64) (*domain.ParticipationRequest, error) {
	r, ok := t.store.requests[requestID]
	if !ok || r.EventID != t.event.ID {
		return nil, domain.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (t *memTx) InsertRequest(ctx context.Context, req *domain.ParticipationRequest) error {
	if active, _ := t.HasActiveRequest(ctx, req.RequesterID); active {
		return domain.ErrDuplicateRequest
	}
	t.store.nextRequestID++
	req.ID = t.store.nextRequestID
	c := *req
	t.store.requests[req.ID] = &c
	return nil
}

func (t *memTx) UpdateStatuses(ctx context.Context, reqs []*domain.ParticipationRequest) error {
	for _, req := range reqs {
		if stored, ok := t.store.requests[req.ID]; ok && stored.EventID == t.event.ID {
			stored.Status = req.Status
		}
	}
	return nil
}

func (t *memTx) SetConfirmedCount(ctx context.Context, n int) error {
	t.store.events[t.event.ID].ConfirmedRequests = n
	t.event.ConfirmedRequests = n
	return nil
}

func (t *memTx) UpdateEvent(ctx context.Context, e *domain.Event) error {
	c := *e
	c.ConfirmedRequests = t.store.events[t.event.ID].ConfirmedRequests
	t.store.events[t.event.ID] = &c
	return nil
}

// Repositories backed by the same store.

type memEventRepo struct{ store *memStore }

func (r memEventRepo) Create(ctx context.Context, e *domain.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextEventID++
	e.ID = r.store.nextEventID
	c := *e
	r.store.events[e.ID] = &c
	return nil
}

func (r memEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (r memEventRepo) list(params domain.PaginationParams, keep func(e *domain.Event) bool) ([]*domain.Event, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	all := make([]*domain.Event, 0)
	for _, id := range slices.Sorted(maps.Keys(r.store.events)) {
		if e := r.store.events[id]; keep(e) {
			c := *e
			all = append(all, &c)
		}
	}
	return domain.Slice(all, params), len(all), nil
}

func (r memEventRepo) ListByInitiatorID(ctx context.Context, initiatorID int64, params domain.PaginationParams) ([]*domain.Event, int, error) {
	return r.list(params, func(e *domain.Event) bool { return e.InitiatorID == initiatorID })
}

// ListPublished orders by id rather than event date; tests that care about order use VIEWS.
func (r memEventRepo) ListPublished(ctx context.Context, f domain.PublicEventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	return r.list(params, func(e *domain.Event) bool {
		switch {
		case e.State != domain.EventPublished:
			return false
		case f.Text != "" && !strings.Contains(strings.ToLower(e.Title+" "+e.Annotation+" "+e.Description), strings.ToLower(f.Text)):
			return false
		case len(f.CategoryIDs) > 0 && !slices.Contains(f.CategoryIDs, e.CategoryID):
			return false
		case f.Paid != nil && e.Paid != *f.Paid:
			return false
		case f.OnlyAvailable && e.ParticipantLimit > 0 && e.ConfirmedRequests >= e.ParticipantLimit:
			return false
		}
		return inRange(e, f.RangeStart, f.RangeEnd)
	})
}

func (r memEventRepo) ListForAdmin(ctx context.Context, f domain.AdminEventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	return r.list(params, func(e *domain.Event) bool {
		switch {
		case len(f.InitiatorIDs) > 0 && !slices.Contains(f.InitiatorIDs, e.InitiatorID):
			return false
		case len(f.States) > 0 && !slices.Contains(f.States, e.State):
			return false
		case len(f.CategoryIDs) > 0 && !slices.Contains(f.CategoryIDs, e.CategoryID):
			return false
		}
		return inRange(e, f.RangeStart, f.RangeEnd)
	})
}

func inRange(e *domain.Event, start, end *time.Time) bool {
	if start != nil && e.EventDate.Before(*start) {
		return false
	}
	return end == nil || !e.EventDate.After(*end)
}

type memRequestRepo struct{ store *memStore }

func (r memRequestRepo) GetByID(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *req
	return &c, nil
}

func (r memRequestRepo) filter(keep func(req *domain.ParticipationRequest) bool) []*domain.ParticipationRequest {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.ParticipationRequest, 0)
	for _, id := range slices.Sorted(maps.Keys(r.store.requests)) {
		if req := r.store.requests[id]; keep(req) {
			c := *req
			out = append(out, &c)
		}
	}
	return out
}

func (r memRequestRepo) ListByRequesterID(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	return r.filter(func(req *domain.ParticipationRequest) bool { return req.RequesterID == requesterID }), nil
}

func (r memRequestRepo) ListByEventID(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	return r.filter(func(req *domain.ParticipationRequest) bool { return req.EventID == eventID }), nil
}

type memUserRepo struct{ store *memStore }

func (r memUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r memUserRepo) ListByIDs(ctx context.Context, ids []int64) ([]*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.store.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type memCategoryRepo struct{ store *memStore }

func (r memCategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// fakeViews is a ViewsAggregator that records hits and returns fixed counts.
type fakeViews struct {
	mu     sync.Mutex
	hits   []string
	counts map[int64]int64
}

func (f *fakeViews) RecordHit(ctx context.Context, uri string, eventID int64, clientAddr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits = append(f.hits, uri+"@"+clientAddr)
}

func (f *fakeViews) ViewsFor(ctx context.Context, events []*domain.Event, asOf time.Time) map[int64]int64 {
	out := make(map[int64]int64, len(events))
	for _, e := range events {
		out[e.ID] = f.counts[e.ID]
	}
	return out
}

// fakeNotifier records every moderation result it is given.
type fakeNotifier struct {
	mu      sync.Mutex
	results []*domain.ModerationResult
}

func (f *fakeNotifier) NotifyModeration(ctx context.Context, event *domain.Event, result *domain.ModerationResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
}
