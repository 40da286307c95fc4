package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"eventhub/internal/domain"

	"github.com/lib/pq"
)

const eventColumns = `id, title, annotation, description, category_id, initiator_id, location_lat, location_lon,
	paid, participant_limit, request_moderation, state, event_date, created_on, published_on, confirmed_requests`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var publishedNull sql.NullTime
	var state string
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID, &e.InitiatorID,
		&e.Location.Lat, &e.Location.Lon, &e.Paid, &e.ParticipantLimit, &e.RequestModeration,
		&state, &e.EventDate, &e.CreatedOn, &publishedNull, &e.ConfirmedRequests,
	)
	if err != nil {
		return nil, err
	}
	e.State = domain.EventState(state)
	if publishedNull.Valid {
		e.PublishedOn = &publishedNull.Time
	}
	return e, nil
}

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns a domain.EventRepository implemented with Postgres.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, annotation, description, category_id, initiator_id, location_lat, location_lon,
			paid, participant_limit, request_moderation, state, event_date, created_on, confirmed_requests)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.InitiatorID, e.Location.Lat, e.Location.Lon,
		e.Paid, e.ParticipantLimit, e.RequestModeration, string(e.State), e.EventDate, e.CreatedOn, e.ConfirmedRequests,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByInitiatorID(ctx context.Context, initiatorID int64, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE initiator_id = $1`, initiatorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE initiator_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3`
	events, err := r.queryEvents(ctx, query, initiatorID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListPublished(ctx context.Context, filter domain.PublicEventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var where conditions
	where.add("state = " + where.arg(string(domain.EventPublished)))
	if filter.Text != "" {
		p := where.arg(likePattern(filter.Text))
		where.add("(title ILIKE " + p + " OR annotation ILIKE " + p + " OR description ILIKE " + p + ")")
	}
	if len(filter.CategoryIDs) > 0 {
		where.add("category_id = ANY(" + where.arg(pq.Array(filter.CategoryIDs)) + ")")
	}
	if filter.Paid != nil {
		where.add("paid = " + where.arg(*filter.Paid))
	}
	where.addRange(filter.RangeStart, filter.RangeEnd)
	if filter.OnlyAvailable {
		where.add("(participant_limit = 0 OR confirmed_requests < participant_limit)")
	}
	return r.listWhere(ctx, where, "event_date, id", params)
}

func (r *eventRepository) ListForAdmin(ctx context.Context, filter domain.AdminEventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var where conditions
	if len(filter.InitiatorIDs) > 0 {
		where.add("initiator_id = ANY(" + where.arg(pq.Array(filter.InitiatorIDs)) + ")")
	}
	if len(filter.States) > 0 {
		states := make([]string, 0, len(filter.States))
		for _, st := range filter.States {
			states = append(states, string(st))
		}
		where.add("state = ANY(" + where.arg(pq.Array(states)) + ")")
	}
	if len(filter.CategoryIDs) > 0 {
		where.add("category_id = ANY(" + where.arg(pq.Array(filter.CategoryIDs)) + ")")
	}
	where.addRange(filter.RangeStart, filter.RangeEnd)
	return r.listWhere(ctx, where, "id", params)
}

// listWhere counts the rows matching where and returns the requested page of them.
func (r *eventRepository) listWhere(ctx context.Context, where conditions, orderBy string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args := append(slices.Clone(where.args), params.Limit(), params.Offset())
	query := fmt.Sprintf(`SELECT %s
		FROM events%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, eventColumns, where, orderBy, len(args)-1, len(args))
	events, err := r.queryEvents(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// conditions collects AND-ed WHERE clauses with their positional arguments.
type conditions struct {
	clauses []string
	args    []any
}

// arg binds v and returns its placeholder.
func (c *conditions) arg(v any) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *conditions) add(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) addRange(start, end *time.Time) {
	if start != nil {
		c.add("event_date >= " + c.arg(*start))
	}
	if end != nil {
		c.add("event_date <= " + c.arg(*end))
	}
}

func (c conditions) String() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// likePattern matches text anywhere in a column, with LIKE wildcards in text taken literally.
func likePattern(text string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(text)
	return "%" + escaped + "%"
}
