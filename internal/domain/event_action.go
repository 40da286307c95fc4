package domain

import (
	"fmt"
	"time"
)

// OrganizerAction is a state change requested by the event initiator.
// The set is closed: SendToReview and CancelReview are the only implementations.
type OrganizerAction interface {
	applyOrganizer(e *Event) error
	String() string
}

// AdminAction is a state change requested by an admin.
// The set is closed: Publish and Reject are the only implementations.
type AdminAction interface {
	applyAdmin(e *Event, now time.Time) error
	String() string
}

// SendToReview moves a non-published event back to PENDING.
type SendToReview struct{}

// CancelReview withdraws a non-published event (CANCELED).
type CancelReview struct{}

// Publish makes a PENDING event visible and open for participation requests.
type Publish struct{}

// Reject cancels an event that has not been published.
type Reject struct{}

func (SendToReview) String() string { return "SEND_TO_REVIEW" }
func (CancelReview) String() string { return "CANCEL_REVIEW" }
func (Publish) String() string      { return "PUBLISH_EVENT" }
func (Reject) String() string       { return "REJECT_EVENT" }

func (SendToReview) applyOrganizer(e *Event) error {
	if e.State == EventPublished {
		return ErrWrongState
	}
	e.State = EventPending
	return nil
}

func (CancelReview) applyOrganizer(e *Event) error {
	if e.State == EventPublished {
		return ErrWrongState
	}
	e.State = EventCanceled
	return nil
}

func (Publish) applyAdmin(e *Event, now time.Time) error {
	if e.State != EventPending {
		return ErrWrongState
	}
	if e.EventDate.Before(now.Add(AdminLeadTime)) {
		return ErrPublishTooLate
	}
	published := now
	e.State = EventPublished
	e.PublishedOn = &published
	return nil
}

func (Reject) applyAdmin(e *Event, _ time.Time) error {
	if e.State == EventPublished {
		return ErrWrongState
	}
	e.State = EventCanceled
	return nil
}

// OrganizerTransition applies a to the event.
func (e *Event) OrganizerTransition(a OrganizerAction) error {
	return a.applyOrganizer(e)
}

// AdminTransition applies a to the event at now.
func (e *Event) AdminTransition(a AdminAction, now time.Time) error {
	return a.applyAdmin(e, now)
}

// ParseOrganizerAction maps the wire value of state_action to an OrganizerAction.
func ParseOrganizerAction(s string) (OrganizerAction, error) {
	switch s {
	case "SEND_TO_REVIEW":
		return SendToReview{}, nil
	case "CANCEL_REVIEW":
		return CancelReview{}, nil
	}
	return nil, fmt.Errorf("%w: unknown state_action %q", ErrValidation, s)
}

// ParseAdminAction maps the wire value of state_action to an AdminAction.
func ParseAdminAction(s string) (AdminAction, error) {
	switch s {
	case "PUBLISH_EVENT":
		return Publish{}, nil
	case "REJECT_EVENT":
		return Reject{}, nil
	}
	return nil, fmt.Errorf("%w: unknown state_action %q", ErrValidation, s)
}
