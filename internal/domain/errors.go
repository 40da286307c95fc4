package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match on these with errors.Is; specific errors below wrap one of them.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("unavailable")
)

// Event lifecycle errors.
var (
	ErrOutOfLeadTime  = fmt.Errorf("%w: event date is too close to the current moment", ErrValidation)
	ErrWrongState     = fmt.Errorf("%w: event is in the wrong state for this operation", ErrConflict)
	ErrPublishTooLate = fmt.Errorf("%w: event starts less than an hour from now", ErrConflict)
)

// Participation request errors.
var (
	ErrSelfRequest       = fmt.Errorf("%w: initiator cannot request participation in own event", ErrConflict)
	ErrEventNotPublished = fmt.Errorf("%w: event is not published", ErrConflict)
	ErrDuplicateRequest  = fmt.Errorf("%w: request already exists", ErrConflict)
	ErrLimitReached      = fmt.Errorf("%w: participant limit reached", ErrConflict)
	ErrRequestNotPending = fmt.Errorf("%w: request must be PENDING", ErrConflict)
)
