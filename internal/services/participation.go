package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

type participationService struct {
	txRunner       domain.EventTxRunner
	requestRepo    domain.ParticipationRequestRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	notifier       domain.ModerationNotifier
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

func NewParticipationService(
	txRunner domain.EventTxRunner,
	requestRepo domain.ParticipationRequestRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	notifier domain.ModerationNotifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ParticipationService {
	return &participationService{
		txRunner:       txRunner,
		requestRepo:    requestRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *participationService) CreateRequest(ctx context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, requesterID); err != nil {
		return nil, lookupErr("get user", err)
	}

	var created *domain.ParticipationRequest
	err := s.txRunner.InEventTx(ctx, eventID, func(ctx context.Context, tx domain.EventTx) error {
		confirmed, err := tx.CountConfirmed(ctx)
		if err != nil {
			return err
		}
		hasActive, err := tx.HasActiveRequest(ctx, requesterID)
		if err != nil {
			return err
		}
		req, err := domain.AdmitRequest(tx.Event(), requesterID, confirmed, hasActive, s.now())
		if err != nil {
			return err
		}
		if err := tx.InsertRequest(ctx, req); err != nil {
			return err
		}
		if req.Status == domain.RequestConfirmed {
			if err := syncConfirmed(ctx, tx); err != nil {
				return err
			}
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "participation request created",
		"request_id", created.ID, "event_id", eventID, "requester_id", requesterID, "status", created.Status)
	return created, nil
}

func (s *participationService) CancelRequest(ctx context.Context, requesterID, requestID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	found, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, lookupErr("get request", err)
	}
	if found.RequesterID != requesterID {
		return nil, domain.ErrNotFound
	}

	var canceled *domain.ParticipationRequest
	err = s.txRunner.InEventTx(ctx, found.EventID, func(ctx context.Context, tx domain.EventTx) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		canceled = req
		if req.Status == domain.RequestCanceled {
			return nil
		}
		wasConfirmed := req.Cancel()
		if err := tx.UpdateStatuses(ctx, []*domain.ParticipationRequest{req}); err != nil {
			return err
		}
		if wasConfirmed {
			return syncConfirmed(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return canceled, nil
}

func (s *participationService) ListMyRequests(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, requesterID); err != nil {
		return nil, lookupErr("get user", err)
	}
	reqs, err := s.requestRepo.ListByRequesterID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}

func (s *participationService) ListEventRequests(ctx context.Context, initiatorID, eventID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr("get event", err)
	}
	if event.InitiatorID != initiatorID {
		return nil, domain.ErrNotFound
	}
	reqs, err := s.requestRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}

// ModerateRequests decides the batch under the event lock: everything is read first,
// the outcome is planned, then every status change and the new confirmed count are
// written in the same transaction. Requesters are notified after commit.
func (s *participationService) ModerateRequests(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, decision domain.Decision) (*domain.ModerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if len(requestIDs) == 0 {
		return nil, fmt.Errorf("%w: request_ids must not be empty", domain.ErrValidation)
	}

	var (
		event *domain.Event
		plan  *domain.ModerationPlan
	)
	err := s.txRunner.InEventTx(ctx, eventID, func(ctx context.Context, tx domain.EventTx) error {
		ev := tx.Event()
		if ev.InitiatorID != initiatorID {
			return domain.ErrNotFound
		}
		confirmed, err := tx.CountConfirmed(ctx)
		if err != nil {
			return err
		}
		batch, err := tx.FindRequests(ctx, requestIDs)
		if err != nil {
			return err
		}
		var pending []*domain.ParticipationRequest
		if decision == domain.DecisionConfirm && ev.ParticipantLimit > 0 {
			if pending, err = tx.ListPending(ctx); err != nil {
				return err
			}
		}

		p, err := domain.PlanModeration(ev, confirmed, requestIDs, batch, pending, decision)
		if err != nil {
			return err
		}
		if err := tx.UpdateStatuses(ctx, p.Changed()); err != nil {
			return err
		}
		if err := tx.SetConfirmedCount(ctx, p.ConfirmedCount); err != nil {
			return err
		}
		event, plan = ev, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &domain.ModerationResult{
		ConfirmedRequests: plan.Confirmed,
		RejectedRequests:  plan.Rejected,
	}
	s.logger.InfoContext(ctx, "participation requests moderated",
		"event_id", eventID, "decision", string(decision),
		"confirmed", len(result.ConfirmedRequests), "rejected", len(result.RejectedRequests),
		"confirmed_total", plan.ConfirmedCount)
	s.notifier.NotifyModeration(ctx, event, result)
	return result, nil
}

// syncConfirmed recounts CONFIRMED requests of the locked event and stores the count on the event.
func syncConfirmed(ctx context.Context, tx domain.EventTx) error {
	n, err := tx.CountConfirmed(ctx)
	if err != nil {
		return err
	}
	return tx.SetConfirmedCount(ctx, n)
}
