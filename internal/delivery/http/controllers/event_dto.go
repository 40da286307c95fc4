package controllers

import (
	"time"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// LocationRequest is the geographic point of an event in request bodies.
type LocationRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

func (l *LocationRequest) toDomain() *domain.Location {
	if l == nil {
		return nil
	}
	return &domain.Location{Lat: *l.Lat, Lon: *l.Lon}
}

// NewEventRequest is the request body for POST /organizer/events.
// event_date is RFC 3339 and must be at least two hours ahead.
type NewEventRequest struct {
	Title             string           `json:"title" validate:"required,min=3,max=120"`
	Annotation        string           `json:"annotation" validate:"required,min=20,max=2000"`
	Description       string           `json:"description" validate:"required,min=20,max=7000"`
	CategoryID        int64            `json:"category_id" validate:"required,gt=0"`
	Location          *LocationRequest `json:"location" validate:"required"`
	Paid              bool             `json:"paid"`
	ParticipantLimit  int              `json:"participant_limit" validate:"gte=0"`
	RequestModeration *bool            `json:"request_moderation"`
	EventDate         time.Time        `json:"event_date" validate:"required"`
}

// Validate implements Validator.
func (n NewEventRequest) Validate() []string {
	return helpers.ValidateStruct(n)
}

// toDraft converts the body to a domain draft. Moderation defaults to on.
func (n NewEventRequest) toDraft() domain.EventDraft {
	moderation := true
	if n.RequestModeration != nil {
		moderation = *n.RequestModeration
	}
	return domain.EventDraft{
		Title:             n.Title,
		Annotation:        n.Annotation,
		Description:       n.Description,
		CategoryID:        n.CategoryID,
		Location:          *n.Location.toDomain(),
		Paid:              n.Paid,
		ParticipantLimit:  n.ParticipantLimit,
		RequestModeration: moderation,
		EventDate:         n.EventDate,
	}
}

// UpdateEventRequest is the request body for PATCH /organizer/events/{eventID} and
// PATCH /admin/events/{eventID}. All fields are optional; omitted fields are unchanged.
// state_action is applied after the field changes.
type UpdateEventRequest struct {
	Title             *string          `json:"title" validate:"omitempty,min=3,max=120"`
	Annotation        *string          `json:"annotation" validate:"omitempty,min=20,max=2000"`
	Description       *string          `json:"description" validate:"omitempty,min=20,max=7000"`
	CategoryID        *int64           `json:"category_id" validate:"omitempty,gt=0"`
	Location          *LocationRequest `json:"location" validate:"omitempty"`
	Paid              *bool            `json:"paid"`
	ParticipantLimit  *int             `json:"participant_limit" validate:"omitempty,gte=0"`
	RequestModeration *bool            `json:"request_moderation"`
	EventDate         *time.Time       `json:"event_date"`
	StateAction       *string          `json:"state_action"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	return helpers.ValidateStruct(u)
}

func (u UpdateEventRequest) toPatch() domain.EventPatch {
	return domain.EventPatch{
		Title:             u.Title,
		Annotation:        u.Annotation,
		Description:       u.Description,
		CategoryID:        u.CategoryID,
		Location:          u.Location.toDomain(),
		Paid:              u.Paid,
		ParticipantLimit:  u.ParticipantLimit,
		RequestModeration: u.RequestModeration,
		EventDate:         u.EventDate,
	}
}

// EventSuccessResponse is the success response envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsResponse is a page of events with its pagination metadata.
type ListEventsResponse struct {
	Items      []*domain.Event        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for paginated event lists.
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

func newListEventsResponse(events []*domain.Event, params domain.PaginationParams, total int) ListEventsResponse {
	if events == nil {
		events = []*domain.Event{}
	}
	return ListEventsResponse{Items: events, Pagination: helpers.NewPaginationMeta(params, total)}
}
