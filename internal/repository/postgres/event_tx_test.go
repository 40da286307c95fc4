package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"eventhub/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requestRowColumns = []string{"id", "event_id", "requester_id", "status", "created"}

func expectLock(mock sqlmock.Sqlmock, id int64, limit, confirmed int) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title, .* FROM events WHERE id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(addEventRow(eventRows(), id, domain.EventPublished, limit, confirmed, testCreated))
}

func TestEventTxRunner_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectLock(mock, 5, 2, 0)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM participation_requests WHERE event_id = \$1 AND status = \$2`).
		WithArgs(int64(5), "CONFIRMED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`UPDATE events SET confirmed_requests = \$1 WHERE id = \$2`).
		WithArgs(1, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewEventTxRunner(db).InEventTx(context.Background(), 5, func(ctx context.Context, tx domain.EventTx) error {
		assert.Equal(t, int64(5), tx.Event().ID)
		n, err := tx.CountConfirmed(ctx)
		if err != nil {
			return err
		}
		if err := tx.SetConfirmedCount(ctx, n); err != nil {
			return err
		}
		assert.Equal(t, 1, tx.Event().ConfirmedRequests)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventTxRunner_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectLock(mock, 5, 2, 2)
	mock.ExpectRollback()

	err = NewEventTxRunner(db).InEventTx(context.Background(), 5, func(ctx context.Context, tx domain.EventTx) error {
		return domain.ErrLimitReached
	})
	require.ErrorIs(t, err, domain.ErrLimitReached)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventTxRunner_EventNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(404)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	called := false
	err = NewEventTxRunner(db).InEventTx(context.Background(), 404, func(ctx context.Context, tx domain.EventTx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventTxRunner_BeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	err = NewEventTxRunner(db).InEventTx(context.Background(), 1, func(ctx context.Context, tx domain.EventTx) error {
		return nil
	})
	require.ErrorIs(t, err, sql.ErrConnDone)
}

func TestPgEventTx_InsertRequest(t *testing.T) {
	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  int64
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO participation_requests \(event_id, requester_id, status, created\)`).
					WithArgs(int64(5), int64(20), "PENDING", testCreated).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))
				mock.ExpectCommit()
			},
			wantID: 77,
		},
		{
			name: "unique violation maps to duplicate",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO participation_requests`).
					WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrDuplicateRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			expectLock(mock, 5, 0, 0)
			tt.mock(mock)

			req := &domain.ParticipationRequest{EventID: 5, RequesterID: 20, Status: domain.RequestPending, Created: testCreated}
			err = NewEventTxRunner(db).InEventTx(context.Background(), 5, func(ctx context.Context, tx domain.EventTx) error {
				return tx.InsertRequest(ctx, req)
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, req.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPgEventTx_ModerationReadsAndWrites(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectLock(mock, 5, 2, 0)
	mock.ExpectQuery(`FROM participation_requests\s+WHERE event_id = \$1 AND id = ANY\(\$2\)\s+ORDER BY id`).
		WithArgs(int64(5), pq.Array([]int64{1, 2})).
		WillReturnRows(sqlmock.NewRows(requestRowColumns).
			AddRow(int64(1), int64(5), int64(21), "PENDING", testCreated).
			AddRow(int64(2), int64(5), int64(22), "PENDING", testCreated))
	mock.ExpectQuery(`FROM participation_requests\s+WHERE event_id = \$1 AND status = \$2\s+ORDER BY id`).
		WithArgs(int64(5), "PENDING").
		WillReturnRows(sqlmock.NewRows(requestRowColumns).
			AddRow(int64(1), int64(5), int64(21), "PENDING", testCreated).
			AddRow(int64(2), int64(5), int64(22), "PENDING", testCreated).
			AddRow(int64(3), int64(5), int64(23), "PENDING", testCreated))
	mock.ExpectExec(`UPDATE participation_requests SET status = \$1 WHERE event_id = \$2 AND id = ANY\(\$3\)`).
		WithArgs("CONFIRMED", int64(5), pq.Array([]int64{1, 2})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE participation_requests SET status = \$1`).
		WithArgs("REJECTED", int64(5), pq.Array([]int64{3})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewEventTxRunner(db).InEventTx(context.Background(), 5, func(ctx context.Context, tx domain.EventTx) error {
		batch, err := tx.FindRequests(ctx, []int64{1, 2})
		if err != nil {
			return err
		}
		require.Len(t, batch, 2)
		pending, err := tx.ListPending(ctx)
		if err != nil {
			return err
		}
		require.Len(t, pending, 3)
		return tx.UpdateStatuses(ctx, []*domain.ParticipationRequest{
			{ID: 1, Status: domain.RequestConfirmed},
			{ID: 3, Status: domain.RequestRejected},
			{ID: 2, Status: domain.RequestConfirmed},
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgEventTx_GetRequestAndActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectLock(mock, 5, 0, 0)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(5), int64(20), "CANCELED").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM participation_requests WHERE id = \$1 AND event_id = \$2`).
		WithArgs(int64(9), int64(5)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err = NewEventTxRunner(db).InEventTx(context.Background(), 5, func(ctx context.Context, tx domain.EventTx) error {
		active, err := tx.HasActiveRequest(ctx, 20)
		if err != nil {
			return err
		}
		assert.True(t, active)
		_, err = tx.GetRequest(ctx, 9)
		return err
	})
	require.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgEventTx_UpdateEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectLock(mock, 5, 0, 0)
	mock.ExpectExec(`UPDATE events SET title = \$1`).
		WithArgs("Renamed", "Short", "Long", int64(3), 52.1, 4.3, false, 0, true, "PUBLISHED", testDate, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewEventTxRunner(db).InEventTx(context.Background(), 5, func(ctx context.Context, tx domain.EventTx) error {
		ev := tx.Event()
		ev.Title = "Renamed"
		return tx.UpdateEvent(ctx, ev)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
