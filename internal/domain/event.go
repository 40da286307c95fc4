package domain

import (
	"context"
	"fmt"
	"time"
)

// Minimum distance between "now" and the event date for organizer and admin changes.
const (
	OrganizerLeadTime = 2 * time.Hour
	AdminLeadTime     = time.Hour
)

// EventState is the publication state of an event.
type EventState string

const (
	EventPending   EventState = "PENDING"
	EventPublished EventState = "PUBLISHED"
	EventCanceled  EventState = "CANCELED"
)

// Location is the geographic point where the event takes place.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event represents an event published by an organizer (initiator).
// swagger:model Event
type Event struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	CategoryID        int64      `json:"category_id"`
	InitiatorID       int64      `json:"initiator_id"`
	Location          Location   `json:"location"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participant_limit"`
	RequestModeration bool       `json:"request_moderation"`
	State             EventState `json:"state"`
	EventDate         time.Time  `json:"event_date"`
	CreatedOn         time.Time  `json:"created_on"`
	PublishedOn       *time.Time `json:"published_on"`
	ConfirmedRequests int        `json:"confirmed_requests"`
	Views             int64      `json:"views"`
}

// EventDraft holds the organizer-supplied fields of a new event.
type EventDraft struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	Location          Location
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
	EventDate         time.Time
}

// EventPatch is a partial update of an event. Nil fields are left unchanged.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	Location          *Location
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	EventDate         *time.Time
}

// SubmitEvent builds a new PENDING event owned by initiatorID.
// The event date must be at least OrganizerLeadTime after now.
func SubmitEvent(initiatorID int64, d EventDraft, now time.Time) (*Event, error) {
	if d.EventDate.Before(now.Add(OrganizerLeadTime)) {
		return nil, ErrOutOfLeadTime
	}
	if d.ParticipantLimit < 0 {
		return nil, fmt.Errorf("%w: participant_limit must be zero or positive", ErrValidation)
	}
	return &Event{
		Title:             d.Title,
		Annotation:        d.Annotation,
		Description:       d.Description,
		CategoryID:        d.CategoryID,
		InitiatorID:       initiatorID,
		Location:          d.Location,
		Paid:              d.Paid,
		ParticipantLimit:  d.ParticipantLimit,
		RequestModeration: d.RequestModeration,
		State:             EventPending,
		EventDate:         d.EventDate,
		CreatedOn:         now,
	}, nil
}

// OrganizerEdit applies p on behalf of the initiator. Only PENDING and CANCELED events are editable.
func (e *Event) OrganizerEdit(p EventPatch, now time.Time) error {
	if e.State != EventPending && e.State != EventCanceled {
		return ErrWrongState
	}
	return e.edit(p, now, OrganizerLeadTime)
}

// AdminEdit applies p on behalf of an admin, in any state, with the shorter lead time.
func (e *Event) AdminEdit(p EventPatch, now time.Time) error {
	return e.edit(p, now, AdminLeadTime)
}

func (e *Event) edit(p EventPatch, now time.Time, lead time.Duration) error {
	if p.EventDate != nil && p.EventDate.Before(now.Add(lead)) {
		return ErrOutOfLeadTime
	}
	if p.ParticipantLimit != nil {
		limit := *p.ParticipantLimit
		if limit < 0 {
			return fmt.Errorf("%w: participant_limit must be zero or positive", ErrValidation)
		}
		if limit > 0 && limit < e.ConfirmedRequests {
			return fmt.Errorf("%w: participant_limit %d is below %d confirmed requests", ErrConflict, limit, e.ConfirmedRequests)
		}
	}

	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Annotation != nil {
		e.Annotation = *p.Annotation
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Paid != nil {
		e.Paid = *p.Paid
	}
	if p.ParticipantLimit != nil {
		e.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		e.RequestModeration = *p.RequestModeration
	}
	if p.EventDate != nil {
		e.EventDate = *p.EventDate
	}
	return nil
}

// EventURI is the path under which the stats service counts views of an event.
func EventURI(eventID int64) string {
	return fmt.Sprintf("/events/%d", eventID)
}

// EventRepository defines the interface for event storage outside the per-event transaction.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	ListByInitiatorID(ctx context.Context, initiatorID int64, params PaginationParams) ([]*Event, int, error)
	// ListPublished returns published events matching filter ordered by event date.
	ListPublished(ctx context.Context, filter PublicEventFilter, params PaginationParams) ([]*Event, int, error)
	// ListForAdmin returns events in any state matching filter ordered by id.
	ListForAdmin(ctx context.Context, filter AdminEventFilter, params PaginationParams) ([]*Event, int, error)
}

// EventService defines organizer, admin and public operations on events.
type EventService interface {
	SubmitEvent(ctx context.Context, initiatorID int64, draft EventDraft) (*Event, error)
	GetOrganizerEvent(ctx context.Context, initiatorID, eventID int64) (*Event, error)
	ListOrganizerEvents(ctx context.Context, initiatorID int64, params PaginationParams) ([]*Event, int, error)
	// UpdateEventByOrganizer applies the patch and then the optional action; nothing is saved if either fails.
	UpdateEventByOrganizer(ctx context.Context, initiatorID, eventID int64, patch EventPatch, action OrganizerAction) (*Event, error)
	// UpdateEventByAdmin applies the patch and then the optional action; nothing is saved if either fails.
	UpdateEventByAdmin(ctx context.Context, eventID int64, patch EventPatch, action AdminAction) (*Event, error)
	GetPublishedEvent(ctx context.Context, eventID int64, clientAddr string) (*Event, error)
	ListPublishedEvents(ctx context.Context, filter PublicEventFilter, params PaginationParams, clientAddr string) ([]*Event, int, error)
	SearchEventsForAdmin(ctx context.Context, filter AdminEventFilter, params PaginationParams) ([]*Event, int, error)
}
