package sqlx_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	libsqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	storage "dailybag/adapters/sqlx"
	"dailybag/core"
	"dailybag/engine"
)

func newMockStore(t *testing.T) (*storage.Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	xdb := storage.NewWithDB(libsqlx.NewDb(db, "postgres"), storage.DriverPostgres)
	cleanup := func() {
		_ = db.Close()
	}
	return xdb, mock, cleanup
}

var choreColumns = []string{"user_id", "id", "title", "points", "final_points", "completed", "completed_by", "completed_at", "position"}

func TestSQLMock_PutRecord_Insert(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()
	user := core.UserID("mia")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(user, "c1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\), 0\)`).
		WithArgs(user).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO chores`).
		WithArgs(user, "c1", "Dishes", 10, nil, false, core.UserID(""), nil, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.PutRecord(ctx, core.ChoreRecord{ID: "c1", Title: "Dishes", AssignedTo: user, Points: 10})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_PutRecord_Update(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()
	user := core.UserID("mia")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(user, "c1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`UPDATE chores SET title`).
		WithArgs("Dishes again", 15, nil, false, core.UserID(""), nil, user, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.PutRecord(ctx, core.ChoreRecord{ID: "c1", Title: "Dishes again", AssignedTo: user, Points: 15})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_CompleteRecord(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()
	user := core.UserID("mia")
	at := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM chores WHERE`).
		WithArgs(user, "c1").
		WillReturnRows(sqlmock.NewRows(choreColumns).
			AddRow("mia", "c1", "Dishes", 10, nil, false, "", nil, 1))
	mock.ExpectExec(`UPDATE chores SET completed`).
		WithArgs(true, user, at, user, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := store.CompleteRecord(ctx, user, "c1", at)
	require.NoError(t, err)
	require.True(t, rec.Completed)
	require.Equal(t, user, rec.CompletedBy)
	require.NotNil(t, rec.CompletedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_CompleteRecord_NotFound(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM chores WHERE`).
		WithArgs(core.UserID("mia"), "missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := store.CompleteRecord(ctx, "mia", "missing", time.Now())
	require.ErrorIs(t, err, engine.ErrChoreNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_CompleteRecord_Already(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()
	done := time.Date(2026, time.March, 13, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM chores WHERE`).
		WithArgs(core.UserID("mia"), "c1").
		WillReturnRows(sqlmock.NewRows(choreColumns).
			AddRow("mia", "c1", "Dishes", 10, nil, true, "mia", done, 1))
	mock.ExpectRollback()

	rec, err := store.CompleteRecord(ctx, "mia", "c1", time.Now())
	require.ErrorIs(t, err, engine.ErrAlreadyCompleted)
	require.True(t, rec.Completed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_ListRecords(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()
	done := time.Date(2026, time.March, 13, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM chores WHERE user_id`).
		WithArgs(core.UserID("mia")).
		WillReturnRows(sqlmock.NewRows(choreColumns).
			AddRow("mia", "c1", "Dishes", 10, 12, true, "mia", done, 1).
			AddRow("mia", "c2", "Laundry", 15, nil, false, "", nil, 2))

	records, err := store.ListRecords(ctx, "mia")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NotNil(t, records[0].FinalPoints)
	require.Equal(t, 12, records[0].AwardedPoints())
	require.Equal(t, "Laundry", records[1].Title)
	require.Nil(t, records[1].CompletedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_AddLifetimePoints_Insert(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()
	user := core.UserID("mia")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT points FROM user_lifetime`).
		WithArgs(user).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO user_lifetime`).
		WithArgs(user, 10).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	total, err := store.AddLifetimePoints(ctx, user, 10)
	require.NoError(t, err)
	require.Equal(t, 10, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_AddLifetimePoints_Update(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()
	user := core.UserID("mia")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT points FROM user_lifetime`).
		WithArgs(user).
		WillReturnRows(sqlmock.NewRows([]string{"points"}).AddRow(20))
	mock.ExpectExec(`UPDATE user_lifetime SET points`).
		WithArgs(30, user).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	total, err := store.AddLifetimePoints(ctx, user, 10)
	require.NoError(t, err)
	require.Equal(t, 30, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_NegativeDeltaReadsOnly(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()
	user := core.UserID("mia")

	mock.ExpectQuery(`SELECT points FROM user_lifetime`).
		WithArgs(user).
		WillReturnRows(sqlmock.NewRows([]string{"points"}).AddRow(40))

	total, err := store.AddLifetimePoints(ctx, user, -5)
	require.NoError(t, err)
	require.Equal(t, 40, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
