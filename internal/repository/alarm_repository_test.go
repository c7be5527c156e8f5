package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
)

func TestAlarmCreateWithIDDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlarmRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO alarms (id, started_at, room_id) VALUES (?, ?, ?)")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '1' for key 'PRIMARY'"))

	err := repo.CreateWithID(context.Background(), &model.Alarm{ID: 1, RoomID: 3, StartedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, ErrAlarmExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Alarm ids are unique per room, so reusing an id in another room is a
// plain insert, not a conflict.
func TestAlarmCreateWithIDSameIDOtherRoom(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlarmRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO alarms (id, started_at, room_id) VALUES (?, ?, ?)")).
		WithArgs(1, sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateWithID(context.Background(), &model.Alarm{ID: 1, RoomID: 7, StartedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlarmEndClosesOpenAlarm(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlarmRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE alarms SET ended_at = NOW() WHERE id = ? AND ended_at IS NULL")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.End(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlarmEndAlreadyEnded(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlarmRepo(db)

	started := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	ended := started.Add(time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE alarms SET ended_at = NOW() WHERE id = ? AND ended_at IS NULL")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, started_at, ended_at, room_id, created_at FROM alarms WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "started_at", "ended_at", "room_id", "created_at"}).
			AddRow(1, started, ended, 3, started))

	err := repo.End(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAlarmEnded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlarmEndMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlarmRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE alarms SET ended_at = NOW() WHERE id = ? AND ended_at IS NULL")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, started_at, ended_at, room_id, created_at FROM alarms WHERE id = ?")).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)

	err := repo.End(context.Background(), 9)
	assert.ErrorIs(t, err, ErrAlarmNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
