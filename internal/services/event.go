package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"eventhub/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	txRunner       domain.EventTxRunner
	userRepo       domain.UserRepository
	categoryRepo   domain.CategoryRepository
	views          domain.ViewsAggregator
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	txRunner domain.EventTxRunner,
	userRepo domain.UserRepository,
	categoryRepo domain.CategoryRepository,
	views domain.ViewsAggregator,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		txRunner:       txRunner,
		userRepo:       userRepo,
		categoryRepo:   categoryRepo,
		views:          views,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *eventService) SubmitEvent(ctx context.Context, initiatorID int64, draft domain.EventDraft) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, initiatorID); err != nil {
		return nil, lookupErr("get user", err)
	}
	if _, err := s.categoryRepo.GetByID(ctx, draft.CategoryID); err != nil {
		return nil, lookupErr("get category", err)
	}

	event, err := domain.SubmitEvent(initiatorID, draft, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event submitted", "event_id", event.ID, "initiator_id", initiatorID)
	return event, nil
}

func (s *eventService) GetOrganizerEvent(ctx context.Context, initiatorID, eventID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr("get event", err)
	}
	if event.InitiatorID != initiatorID {
		return nil, domain.ErrNotFound
	}
	s.fillViews(ctx, []*domain.Event{event})
	return event, nil
}

func (s *eventService) ListOrganizerEvents(ctx context.Context, initiatorID int64, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListByInitiatorID(ctx, initiatorID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	s.fillViews(ctx, events)
	return events, total, nil
}

func (s *eventService) UpdateEventByOrganizer(ctx context.Context, initiatorID, eventID int64, patch domain.EventPatch, action domain.OrganizerAction) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkCategory(ctx, patch); err != nil {
		return nil, err
	}

	var updated *domain.Event
	err := s.txRunner.InEventTx(ctx, eventID, func(ctx context.Context, tx domain.EventTx) error {
		work, err := s.lockedCopy(ctx, tx)
		if err != nil {
			return err
		}
		if work.InitiatorID != initiatorID {
			return domain.ErrNotFound
		}
		if err := work.OrganizerEdit(patch, s.now()); err != nil {
			return err
		}
		if action != nil {
			if err := work.OrganizerTransition(action); err != nil {
				return err
			}
		}
		if err := tx.UpdateEvent(ctx, work); err != nil {
			return err
		}
		updated = work
		return nil
	})
	if err != nil {
		return nil, err
	}
	if action != nil {
		s.logger.InfoContext(ctx, "event state changed by organizer", "event_id", eventID, "action", action.String(), "state", updated.State)
	}
	return updated, nil
}

func (s *eventService) UpdateEventByAdmin(ctx context.Context, eventID int64, patch domain.EventPatch, action domain.AdminAction) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkCategory(ctx, patch); err != nil {
		return nil, err
	}

	var updated *domain.Event
	err := s.txRunner.InEventTx(ctx, eventID, func(ctx context.Context, tx domain.EventTx) error {
		work, err := s.lockedCopy(ctx, tx)
		if err != nil {
			return err
		}
		now := s.now()
		if err := work.AdminEdit(patch, now); err != nil {
			return err
		}
		if action != nil {
			if err := work.AdminTransition(action, now); err != nil {
				return err
			}
		}
		if err := tx.UpdateEvent(ctx, work); err != nil {
			return err
		}
		updated = work
		return nil
	})
	if err != nil {
		return nil, err
	}
	if action != nil {
		s.logger.InfoContext(ctx, "event state changed by admin", "event_id", eventID, "action", action.String(), "state", updated.State)
	}
	return updated, nil
}

func (s *eventService) GetPublishedEvent(ctx context.Context, eventID int64, clientAddr string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr("get event", err)
	}
	if event.State != domain.EventPublished {
		return nil, domain.ErrNotFound
	}
	s.views.RecordHit(ctx, domain.EventURI(event.ID), event.ID, clientAddr)
	s.fillViews(ctx, []*domain.Event{event})
	return event, nil
}

func (s *eventService) ListPublishedEvents(ctx context.Context, filter domain.PublicEventFilter, params domain.PaginationParams, clientAddr string) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	filter = filter.WithDefaultWindow(s.now())

	// VIEWS is ranked over every match here; the page is cut afterwards.
	page := params
	if filter.Sort == domain.SortByViews {
		page = domain.PaginationParams{}
	}
	events, total, err := s.eventRepo.ListPublished(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list published events: %w", err)
	}
	s.views.RecordHit(ctx, "/events", 0, clientAddr)
	s.fillViews(ctx, events)
	if filter.Sort == domain.SortByViews {
		slices.SortFunc(events, func(a, b *domain.Event) int {
			return cmp.Or(cmp.Compare(b.Views, a.Views), cmp.Compare(a.ID, b.ID))
		})
		events = domain.Slice(events, params)
	}
	return events, total, nil
}

func (s *eventService) SearchEventsForAdmin(ctx context.Context, filter domain.AdminEventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	events, total, err := s.eventRepo.ListForAdmin(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("search events: %w", err)
	}
	s.fillViews(ctx, events)
	return events, total, nil
}

// lockedCopy returns a copy of the locked event with the confirmed count taken from the requests table.
func (s *eventService) lockedCopy(ctx context.Context, tx domain.EventTx) (*domain.Event, error) {
	work := *tx.Event()
	confirmed, err := tx.CountConfirmed(ctx)
	if err != nil {
		return nil, err
	}
	work.ConfirmedRequests = confirmed
	return &work, nil
}

func (s *eventService) checkCategory(ctx context.Context, patch domain.EventPatch) error {
	if patch.CategoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(ctx, *patch.CategoryID); err != nil {
		return lookupErr("get category", err)
	}
	return nil
}

func (s *eventService) fillViews(ctx context.Context, events []*domain.Event) {
	if len(events) == 0 {
		return
	}
	views := s.views.ViewsFor(ctx, events, s.now())
	for _, e := range events {
		e.Views = views[e.ID]
	}
}

// lookupErr passes ErrNotFound through untouched and wraps anything else.
func lookupErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
