package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// Decision is the organizer's verdict on a moderation batch.
type Decision string

const (
	DecisionConfirm Decision = "CONFIRMED"
	DecisionReject  Decision = "REJECTED"
)

// ParseDecision maps the wire value of a moderation status to a Decision.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionConfirm, DecisionReject:
		return d, nil
	}
	return "", fmt.Errorf("%w: status must be CONFIRMED or REJECTED", ErrValidation)
}

// ModerationPlan is the complete outcome of a moderation batch, computed before anything is written.
// Confirmed and Rejected hold updated copies of the requests in the order they were decided;
// ConfirmedCount is the event's confirmed count once the plan is applied.
type ModerationPlan struct {
	Confirmed      []*ParticipationRequest
	Rejected       []*ParticipationRequest
	ConfirmedCount int
}

// Changed returns every request whose status the plan changes.
func (p *ModerationPlan) Changed() []*ParticipationRequest {
	out := make([]*ParticipationRequest, 0, len(p.Confirmed)+len(p.Rejected))
	out = append(out, p.Confirmed...)
	return append(out, p.Rejected...)
}

// PlanModeration decides the batch requestIDs for event e.
//
// confirmed is the event's current confirmed count, batch the requests found for requestIDs
// and pending every PENDING request of the event; all three must be read under the event lock.
// Every listed request must belong to e and be PENDING. Confirmation processes the batch in
// ascending id order and rejects whatever does not fit under the participant limit; once the
// limit is reached the remaining PENDING requests of the event are rejected as well.
// The inputs are not modified.
func PlanModeration(e *Event, confirmed int, requestIDs []int64, batch, pending []*ParticipationRequest, decision Decision) (*ModerationPlan, error) {
	ids := slices.Clone(requestIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: request_ids must not be empty", ErrValidation)
	}

	found := make(map[int64]*ParticipationRequest, len(batch))
	for _, r := range batch {
		if r.EventID == e.ID {
			found[r.ID] = r
		}
	}
	listed := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		r, ok := found[id]
		if !ok || r.Status != RequestPending {
			return nil, fmt.Errorf("request %d: %w", id, ErrRequestNotPending)
		}
		listed[id] = struct{}{}
	}

	plan := &ModerationPlan{
		Confirmed:      []*ParticipationRequest{},
		Rejected:       []*ParticipationRequest{},
		ConfirmedCount: confirmed,
	}

	if decision == DecisionReject {
		for _, id := range ids {
			plan.Rejected = append(plan.Rejected, withStatus(found[id], RequestRejected))
		}
		return plan, nil
	}
	if decision != DecisionConfirm {
		return nil, fmt.Errorf("%w: unknown decision %q", ErrValidation, decision)
	}

	limit := e.ParticipantLimit
	if limit > 0 && confirmed >= limit {
		return nil, ErrLimitReached
	}

	for _, id := range ids {
		if limit == 0 || plan.ConfirmedCount < limit {
			plan.Confirmed = append(plan.Confirmed, withStatus(found[id], RequestConfirmed))
			plan.ConfirmedCount++
			continue
		}
		plan.Rejected = append(plan.Rejected, withStatus(found[id], RequestRejected))
	}

	if limit > 0 && plan.ConfirmedCount >= limit {
		rest := slices.Clone(pending)
		slices.SortFunc(rest, func(a, b *ParticipationRequest) int { return cmp.Compare(a.ID, b.ID) })
		for _, r := range rest {
			if _, inBatch := listed[r.ID]; inBatch || r.Status != RequestPending || r.EventID != e.ID {
				continue
			}
			plan.Rejected = append(plan.Rejected, withStatus(r, RequestRejected))
		}
	}
	return plan, nil
}

func withStatus(r *ParticipationRequest, status RequestStatus) *ParticipationRequest {
	next := *r
	next.Status = status
	return &next
}
