package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/domain"
)

const requestColumns = `id, event_id, requester_id, status, created`

func scanRequest(row rowScanner) (*domain.ParticipationRequest, error) {
	req := &domain.ParticipationRequest{}
	var status string
	if err := row.Scan(&req.ID, &req.EventID, &req.RequesterID, &status, &req.Created); err != nil {
		return nil, err
	}
	req.Status = domain.RequestStatus(status)
	return req, nil
}

func collectRequests(rows *sql.Rows) ([]*domain.ParticipationRequest, error) {
	defer rows.Close()
	reqs := make([]*domain.ParticipationRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

type participationRequestRepository struct {
	DB *sql.DB
}

// NewParticipationRequestRepository returns a domain.ParticipationRequestRepository implemented with Postgres.
func NewParticipationRequestRepository(db *sql.DB) domain.ParticipationRequestRepository {
	return &participationRequestRepository{DB: db}
}

func (r *participationRequestRepository) GetByID(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = $1`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *participationRequestRepository) ListByRequesterID(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE requester_id = $1 ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *participationRequestRepository) ListByEventID(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE event_id = $1 ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}
