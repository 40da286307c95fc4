package domain

import (
	"fmt"
	"time"
)

// PublicEventSort orders the public event list.
type PublicEventSort string

const (
	SortByEventDate PublicEventSort = "EVENT_DATE"
	SortByViews     PublicEventSort = "VIEWS"
)

// ParsePublicEventSort maps the sort query value to a PublicEventSort. An empty value means EVENT_DATE.
func ParsePublicEventSort(s string) (PublicEventSort, error) {
	switch PublicEventSort(s) {
	case "", SortByEventDate:
		return SortByEventDate, nil
	case SortByViews:
		return SortByViews, nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", ErrValidation, s)
}

// PublicEventFilter narrows the list of published events. Zero fields do not filter.
type PublicEventFilter struct {
	Text          string
	CategoryIDs   []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          PublicEventSort
}

func (f PublicEventFilter) Validate() error {
	return validateRange(f.RangeStart, f.RangeEnd)
}

// WithDefaultWindow limits the filter to events after now when neither range bound is set.
func (f PublicEventFilter) WithDefaultWindow(now time.Time) PublicEventFilter {
	if f.RangeStart == nil && f.RangeEnd == nil {
		f.RangeStart = &now
	}
	return f
}

// AdminEventFilter narrows the admin event search. Zero fields do not filter.
type AdminEventFilter struct {
	InitiatorIDs []int64
	States       []EventState
	CategoryIDs  []int64
	RangeStart   *time.Time
	RangeEnd     *time.Time
}

func (f AdminEventFilter) Validate() error {
	for _, s := range f.States {
		switch s {
		case EventPending, EventPublished, EventCanceled:
		default:
			return fmt.Errorf("%w: unknown state %q", ErrValidation, s)
		}
	}
	return validateRange(f.RangeStart, f.RangeEnd)
}

func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("%w: rangeEnd is before rangeStart", ErrValidation)
	}
	return nil
}
