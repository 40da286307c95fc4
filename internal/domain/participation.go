package domain

import (
	"context"
	"time"
)

// RequestStatus is the state of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest represents a user's request to take part in an event.
// swagger:model ParticipationRequest
type ParticipationRequest struct {
	ID          int64         `json:"id"`
	EventID     int64         `json:"event"`
	RequesterID int64         `json:"requester"`
	Status      RequestStatus `json:"status"`
	Created     time.Time     `json:"created"`
}

// AdmitRequest decides whether requesterID may ask to join e and with which initial status.
// confirmed is the current number of CONFIRMED requests for e; hasActive reports whether the
// requester already holds a request for e that is not CANCELED. Both must be read under the
// event lock.
func AdmitRequest(e *Event, requesterID int64, confirmed int, hasActive bool, now time.Time) (*ParticipationRequest, error) {
	if requesterID == e.InitiatorID {
		return nil, ErrSelfRequest
	}
	if e.State != EventPublished {
		return nil, ErrEventNotPublished
	}
	if hasActive {
		return nil, ErrDuplicateRequest
	}
	if e.ParticipantLimit > 0 && confirmed >= e.ParticipantLimit {
		return nil, ErrLimitReached
	}
	status := RequestPending
	if !e.RequestModeration || e.ParticipantLimit == 0 {
		status = RequestConfirmed
	}
	return &ParticipationRequest{
		EventID:     e.ID,
		RequesterID: requesterID,
		Status:      status,
		Created:     now,
	}, nil
}

// Cancel moves the request to CANCELED and reports whether it held a confirmed slot.
func (r *ParticipationRequest) Cancel() (wasConfirmed bool) {
	wasConfirmed = r.Status == RequestConfirmed
	r.Status = RequestCanceled
	return wasConfirmed
}

// EventTx is the view of one event and its requests inside a transaction that holds the event lock.
type EventTx interface {
	// Event returns the locked event row.
	Event() *Event
	CountConfirmed(ctx context.Context) (int, error)
	// FindRequests returns the requests of the locked event whose ids are in ids, ordered by id.
	FindRequests(ctx context.Context, ids []int64) ([]*ParticipationRequest, error)
	// ListPending returns all PENDING requests of the locked event, ordered by id.
	ListPending(ctx context.Context) ([]*ParticipationRequest, error)
	HasActiveRequest(ctx context.Context, requesterID int64) (bool, error)
	GetRequest(ctx context.Context, requestID int64) (*ParticipationRequest, error)
	InsertRequest(ctx context.Context, req *ParticipationRequest) error
	UpdateStatuses(ctx context.Context, reqs []*ParticipationRequest) error
	SetConfirmedCount(ctx context.Context, n int) error
	UpdateEvent(ctx context.Context, e *Event) error
}

// EventTxRunner runs fn in a transaction holding an exclusive lock on the event row.
// The transaction commits when fn returns nil and rolls back otherwise.
// Returns ErrNotFound when the event does not exist.
type EventTxRunner interface {
	InEventTx(ctx context.Context, eventID int64, fn func(ctx context.Context, tx EventTx) error) error
}

// ParticipationRequestRepository defines read-only request lookups outside the event lock.
type ParticipationRequestRepository interface {
	GetByID(ctx context.Context, id int64) (*ParticipationRequest, error)
	ListByRequesterID(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	ListByEventID(ctx context.Context, eventID int64) ([]*ParticipationRequest, error)
}

// ModerationResult lists the outcome of a moderation batch in decision order.
// swagger:model ModerationResult
type ModerationResult struct {
	ConfirmedRequests []*ParticipationRequest `json:"confirmed_requests"`
	RejectedRequests  []*ParticipationRequest `json:"rejected_requests"`
}

// ParticipationService defines requester and organizer operations on participation requests.
type ParticipationService interface {
	CreateRequest(ctx context.Context, requesterID, eventID int64) (*ParticipationRequest, error)
	CancelRequest(ctx context.Context, requesterID, requestID int64) (*ParticipationRequest, error)
	ListMyRequests(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	ListEventRequests(ctx context.Context, initiatorID, eventID int64) ([]*ParticipationRequest, error)
	ModerateRequests(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, decision Decision) (*ModerationResult, error)
}
