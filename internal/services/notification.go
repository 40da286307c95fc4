package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"eventhub/internal/domain"
)

const notifyConcurrency = 4

// ModerationNotifier emails every decided requester once a moderation batch has committed.
// Mail goes out in the background with its own timeout; Close waits for it.
type ModerationNotifier struct {
	userRepo domain.UserRepository
	renderer domain.EmailTemplateRenderer
	mailer   domain.Mailer
	logger   *slog.Logger
	timeout  time.Duration
	inflight background
}

var _ domain.ModerationNotifier = (*ModerationNotifier)(nil)

func NewModerationNotifier(userRepo domain.UserRepository, renderer domain.EmailTemplateRenderer, mailer domain.Mailer, logger *slog.Logger, timeout time.Duration) *ModerationNotifier {
	return &ModerationNotifier{userRepo: userRepo, renderer: renderer, mailer: mailer, logger: logger, timeout: timeout}
}

// NotifyModeration returns at once. Copies of the event and result are taken so callers may reuse them.
func (n *ModerationNotifier) NotifyModeration(ctx context.Context, event *domain.Event, result *domain.ModerationResult) {
	if len(result.ConfirmedRequests)+len(result.RejectedRequests) == 0 {
		return
	}
	ev := *event
	res := domain.ModerationResult{
		ConfirmedRequests: copyRequestList(result.ConfirmedRequests),
		RejectedRequests:  copyRequestList(result.RejectedRequests),
	}
	started := n.inflight.Go(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()
		n.notify(ctx, &ev, &res)
	})
	if !started {
		n.logger.WarnContext(ctx, "moderation emails dropped after shutdown", "event_id", event.ID)
	}
}

// Close blocks until every pending batch of mail has been handed to the mailer.
func (n *ModerationNotifier) Close() {
	n.inflight.Close()
}

func copyRequestList(in []*domain.ParticipationRequest) []*domain.ParticipationRequest {
	out := make([]*domain.ParticipationRequest, 0, len(in))
	for _, r := range in {
		c := *r
		out = append(out, &c)
	}
	return out
}

func (n *ModerationNotifier) notify(ctx context.Context, event *domain.Event, result *domain.ModerationResult) {
	decided := make([]*domain.ParticipationRequest, 0, len(result.ConfirmedRequests)+len(result.RejectedRequests))
	decided = append(decided, result.ConfirmedRequests...)
	decided = append(decided, result.RejectedRequests...)
	if len(decided) == 0 {
		return
	}

	ids := make([]int64, 0, len(decided))
	for _, r := range decided {
		ids = append(ids, r.RequesterID)
	}
	users, err := n.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		n.logger.WarnContext(ctx, "moderation emails skipped", "event_id", event.ID, "err", err)
		return
	}
	byID := make(map[int64]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	var g errgroup.Group
	g.SetLimit(notifyConcurrency)
	for _, r := range decided {
		u, ok := byID[r.RequesterID]
		if !ok || u.Email == "" {
			continue
		}
		data := domain.RequestOutcomeEmailData{
			Email:      u.Email,
			Name:       u.Name,
			EventTitle: event.Title,
			EventID:    event.ID,
			RequestID:  r.ID,
			Status:     r.Status,
		}
		g.Go(func() error {
			if err := n.send(ctx, data); err != nil {
				n.logger.WarnContext(ctx, "moderation email failed", "request_id", data.RequestID, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (n *ModerationNotifier) send(ctx context.Context, data domain.RequestOutcomeEmailData) error {
	name := domain.EmailTemplateRequestRejected
	if data.Status == domain.RequestConfirmed {
		name = domain.EmailTemplateRequestConfirmed
	}
	subject, html, text, err := n.renderer.Render(name, data)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, data.Email, subject, html, text)
}
