package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"

	"eventhub/internal/domain"

	"github.com/lib/pq"
)

type eventTxRunner struct {
	DB *sql.DB
}

// NewEventTxRunner returns a domain.EventTxRunner that serializes work on one event
// by holding a row lock (SELECT ... FOR UPDATE) on it for the whole transaction.
func NewEventTxRunner(db *sql.DB) domain.EventTxRunner {
	return &eventTxRunner{DB: db}
}

func (r *eventTxRunner) InEventTx(ctx context.Context, eventID int64, fn func(ctx context.Context, tx domain.EventTx) error) (err error) {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	ev, err := scanEvent(tx.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	if err = fn(ctx, &pgEventTx{tx: tx, event: ev}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type pgEventTx struct {
	tx    *sql.Tx
	event *domain.Event
}

func (t *pgEventTx) Event() *domain.Event {
	return t.event
}

func (t *pgEventTx) CountConfirmed(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participation_requests WHERE event_id = $1 AND status = $2`,
		t.event.ID, string(domain.RequestConfirmed),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count confirmed: %w", err)
	}
	return n, nil
}

func (t *pgEventTx) FindRequests(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE event_id = $1 AND id = ANY($2)
		ORDER BY id`
	rows, err := t.tx.QueryContext(ctx, query, t.event.ID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find requests: %w", err)
	}
	return collectRequests(rows)
}

func (t *pgEventTx) ListPending(ctx context.Context) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE event_id = $1 AND status = $2
		ORDER BY id`
	rows, err := t.tx.QueryContext(ctx, query, t.event.ID, string(domain.RequestPending))
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return collectRequests(rows)
}

func (t *pgEventTx) HasActiveRequest(ctx context.Context, requesterID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM participation_requests WHERE event_id = $1 AND requester_id = $2 AND status <> $3)`,
		t.event.ID, requesterID, string(domain.RequestCanceled),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active request: %w", err)
	}
	return exists, nil
}

func (t *pgEventTx) GetRequest(ctx context.Context, requestID int64) (*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = $1 AND event_id = $2`
	req, err := scanRequest(t.tx.QueryRowContext(ctx, query, requestID, t.event.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

func (t *pgEventTx) InsertRequest(ctx context.Context, req *domain.ParticipationRequest) error {
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO participation_requests (event_id, requester_id, status, created) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.EventID, req.RequesterID, string(req.Status), req.Created,
	).Scan(&req.ID)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return domain.ErrDuplicateRequest
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// UpdateStatuses writes the status of every request, one statement per distinct status.
func (t *pgEventTx) UpdateStatuses(ctx context.Context, reqs []*domain.ParticipationRequest) error {
	byStatus := make(map[domain.RequestStatus][]int64)
	for _, req := range reqs {
		byStatus[req.Status] = append(byStatus[req.Status], req.ID)
	}
	for _, status := range slices.Sorted(maps.Keys(byStatus)) {
		_, err := t.tx.ExecContext(ctx,
			`UPDATE participation_requests SET status = $1 WHERE event_id = $2 AND id = ANY($3)`,
			string(status), t.event.ID, pq.Array(byStatus[status]),
		)
		if err != nil {
			return fmt.Errorf("update request status: %w", err)
		}
	}
	return nil
}

func (t *pgEventTx) SetConfirmedCount(ctx context.Context, n int) error {
	if _, err := t.tx.ExecContext(ctx, `UPDATE events SET confirmed_requests = $1 WHERE id = $2`, n, t.event.ID); err != nil {
		return fmt.Errorf("set confirmed count: %w", err)
	}
	t.event.ConfirmedRequests = n
	return nil
}

func (t *pgEventTx) UpdateEvent(ctx context.Context, e *domain.Event) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE events SET title = $1, annotation = $2, description = $3, category_id = $4,
			location_lat = $5, location_lon = $6, paid = $7, participant_limit = $8, request_moderation = $9,
			state = $10, event_date = $11, published_on = $12
		WHERE id = $13`,
		e.Title, e.Annotation, e.Description, e.CategoryID,
		e.Location.Lat, e.Location.Lon, e.Paid, e.ParticipantLimit, e.RequestModeration,
		string(e.State), e.EventDate, e.PublishedOn, t.event.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}
