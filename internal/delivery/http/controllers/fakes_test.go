package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err    error
	event  *domain.Event
	events []*domain.Event
	total  int

	lastInitiatorID  int64
	lastEventID      int64
	lastDraft        domain.EventDraft
	lastPatch        domain.EventPatch
	lastOrgAction    domain.OrganizerAction
	lastAdminAction  domain.AdminAction
	lastParams       domain.PaginationParams
	lastPublicFilter domain.PublicEventFilter
	lastAdminFilter  domain.AdminEventFilter
	lastClientAddr   string
	calls            int
}

func (f *fakeEventService) SubmitEvent(_ context.Context, initiatorID int64, draft domain.EventDraft) (*domain.Event, error) {
	f.calls++
	f.lastInitiatorID, f.lastDraft = initiatorID, draft
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: 1, Title: draft.Title, InitiatorID: initiatorID, State: domain.EventPending}, nil
}

func (f *fakeEventService) GetOrganizerEvent(_ context.Context, initiatorID, eventID int64) (*domain.Event, error) {
	f.calls++
	f.lastInitiatorID, f.lastEventID = initiatorID, eventID
	return f.event, f.err
}

func (f *fakeEventService) ListOrganizerEvents(_ context.Context, initiatorID int64, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.calls++
	f.lastInitiatorID, f.lastParams = initiatorID, params
	return f.events, f.total, f.err
}

func (f *fakeEventService) UpdateEventByOrganizer(_ context.Context, initiatorID, eventID int64, patch domain.EventPatch, action domain.OrganizerAction) (*domain.Event, error) {
	f.calls++
	f.lastInitiatorID, f.lastEventID, f.lastPatch, f.lastOrgAction = initiatorID, eventID, patch, action
	return f.event, f.err
}

func (f *fakeEventService) UpdateEventByAdmin(_ context.Context, eventID int64, patch domain.EventPatch, action domain.AdminAction) (*domain.Event, error) {
	f.calls++
	f.lastEventID, f.lastPatch, f.lastAdminAction = eventID, patch, action
	return f.event, f.err
}

func (f *fakeEventService) GetPublishedEvent(_ context.Context, eventID int64, clientAddr string) (*domain.Event, error) {
	f.calls++
	f.lastEventID, f.lastClientAddr = eventID, clientAddr
	return f.event, f.err
}

func (f *fakeEventService) ListPublishedEvents(_ context.Context, filter domain.PublicEventFilter, params domain.PaginationParams, clientAddr string) ([]*domain.Event, int, error) {
	f.calls++
	f.lastPublicFilter, f.lastParams, f.lastClientAddr = filter, params, clientAddr
	return f.events, f.total, f.err
}

func (f *fakeEventService) SearchEventsForAdmin(_ context.Context, filter domain.AdminEventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.calls++
	f.lastAdminFilter, f.lastParams = filter, params
	return f.events, f.total, f.err
}

// fakeParticipationService implements domain.ParticipationService for handler tests.
type fakeParticipationService struct {
	err      error
	request  *domain.ParticipationRequest
	requests []*domain.ParticipationRequest
	result   *domain.ModerationResult

	lastUserID     int64
	lastEventID    int64
	lastRequestID  int64
	lastRequestIDs []int64
	lastDecision   domain.Decision
	calls          int
}

func (f *fakeParticipationService) CreateRequest(_ context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error) {
	f.calls++
	f.lastUserID, f.lastEventID = requesterID, eventID
	return f.request, f.err
}

func (f *fakeParticipationService) CancelRequest(_ context.Context, requesterID, requestID int64) (*domain.ParticipationRequest, error) {
	f.calls++
	f.lastUserID, f.lastRequestID = requesterID, requestID
	return f.request, f.err
}

func (f *fakeParticipationService) ListMyRequests(_ context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	f.calls++
	f.lastUserID = requesterID
	return f.requests, f.err
}

func (f *fakeParticipationService) ListEventRequests(_ context.Context, initiatorID, eventID int64) ([]*domain.ParticipationRequest, error) {
	f.calls++
	f.lastUserID, f.lastEventID = initiatorID, eventID
	return f.requests, f.err
}

func (f *fakeParticipationService) ModerateRequests(_ context.Context, initiatorID, eventID int64, requestIDs []int64, decision domain.Decision) (*domain.ModerationResult, error) {
	f.calls++
	f.lastUserID, f.lastEventID, f.lastRequestIDs, f.lastDecision = initiatorID, eventID, requestIDs, decision
	return f.result, f.err
}

// newRequest builds a request with path values set and, when userID > 0, an authenticated principal.
func newRequest(method, target, body string, userID int64, pathValues map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if userID > 0 {
		req = req.WithContext(middleware.SetPrincipal(req.Context(), domain.Principal{UserID: userID}))
	}
	return req
}

// decodeEnvelope decodes the response envelope and unmarshals data into dest when dest is non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if dest != nil {
		require.Nil(t, envelope.Error, "success response must have error nil")
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, dest))
	}
	return envelope
}
