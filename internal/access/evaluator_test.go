package access

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

const (
	selectResidentByID = "SELECT id, name, surname, birth_date, gender, family_id, room_id, created_by, created_at, updated_at FROM residents WHERE id = ?"
	selectRoomByID     = "SELECT id, name, kind, shelter_id, max_people, created_by, created_at FROM rooms WHERE id = ?"
	selectRoomHeads    = "SELECT COUNT(*) FROM residents WHERE room_id = ?"
	selectFamilyByRoom = "SELECT id, family_name, room_id, shelter_id, created_by, created_at FROM families WHERE room_id = ? LIMIT 1"
	updateResidentRoom = "UPDATE residents SET room_id = ?, updated_at = ? WHERE id = ?"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestEvaluator(t *testing.T) (*Evaluator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEvaluator(
		repository.NewResidentRepo(db),
		repository.NewRoomRepo(db),
		repository.NewFamilyRepo(db),
	), mock
}

func residentRow(id uint64, familyID any, roomID any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "surname", "birth_date", "gender",
		"family_id", "room_id", "created_by", "created_at", "updated_at"}).
		AddRow(id, "Ada", "Smith", now, "F", familyID, roomID, 1, now, nil)
}

func roomRow(id uint64, name string, kind model.RoomKind, maxPeople int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "kind", "shelter_id", "max_people", "created_by", "created_at"}).
		AddRow(id, name, string(kind), 1, maxPeople, 1, now)
}

func familyRow(id uint64, roomID uint64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "family_name", "room_id", "shelter_id", "created_by", "created_at"}).
		AddRow(id, "Smith", roomID, 1, 1, now)
}

func countRow(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(n)
}

func expectLookups(mock sqlmock.Sqlmock, residentID uint64, familyID any, room *sqlmock.Rows, roomID uint64) {
	mock.ExpectQuery(regexp.QuoteMeta(selectResidentByID)).
		WithArgs(residentID).
		WillReturnRows(residentRow(residentID, familyID, 3))
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomByID)).
		WithArgs(roomID).
		WillReturnRows(room)
}

func TestEvaluateAccessMaintenanceDenied(t *testing.T) {
	ev, mock := newTestEvaluator(t)

	expectLookups(mock, 7, 5, roomRow(4, "maintenance room", model.RoomKindMaintenance, 10), 4)

	d, err := ev.EvaluateAccess(context.Background(), 7, 4)
	require.NoError(t, err)
	assert.False(t, d.Granted)
	assert.Equal(t, ReasonMaintenance, d.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateAccessFullRoomDenied(t *testing.T) {
	ev, mock := newTestEvaluator(t)

	expectLookups(mock, 7, 5, roomRow(4, "Kitchen", model.RoomKindPublic, 3), 4)
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomHeads)).
		WithArgs(4).
		WillReturnRows(countRow(3))

	d, err := ev.EvaluateAccess(context.Background(), 7, 4)
	require.NoError(t, err)
	assert.False(t, d.Granted)
	assert.Equal(t, ReasonRoomFull, d.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateAccessPublicRoomGranted(t *testing.T) {
	ev, mock := newTestEvaluator(t)

	expectLookups(mock, 7, 5, roomRow(4, "Kitchen", model.RoomKindPublic, 10), 4)
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomHeads)).
		WithArgs(4).
		WillReturnRows(countRow(2))

	d, err := ev.EvaluateAccess(context.Background(), 7, 4)
	require.NoError(t, err)
	assert.True(t, d.Granted)
	assert.Equal(t, ReasonPublicRoom, d.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateAccessFamilyRoomGrantedAndRecorded(t *testing.T) {
	ev, mock := newTestEvaluator(t)

	expectLookups(mock, 7, 5, roomRow(4, "Room Smith", model.RoomKindRestricted, 10), 4)
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomHeads)).
		WithArgs(4).
		WillReturnRows(countRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyByRoom)).
		WithArgs(4).
		WillReturnRows(familyRow(5, 4))
	// entry is recorded as the resident's current room
	mock.ExpectExec(regexp.QuoteMeta(updateResidentRoom)).
		WithArgs(4, sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	d, err := ev.EvaluateAccess(context.Background(), 7, 4)
	require.NoError(t, err)
	assert.True(t, d.Granted)
	assert.Equal(t, ReasonFamilyRoom, d.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateAccessForeignFamilyRoomDenied(t *testing.T) {
	ev, mock := newTestEvaluator(t)

	expectLookups(mock, 7, 6, roomRow(4, "Room Smith", model.RoomKindRestricted, 10), 4)
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomHeads)).
		WithArgs(4).
		WillReturnRows(countRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyByRoom)).
		WithArgs(4).
		WillReturnRows(familyRow(5, 4))

	d, err := ev.EvaluateAccess(context.Background(), 7, 4)
	require.NoError(t, err)
	assert.False(t, d.Granted)
	assert.Equal(t, ReasonNoFamily, d.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateAccessRestrictedWithoutFamilyDenied(t *testing.T) {
	ev, mock := newTestEvaluator(t)

	expectLookups(mock, 7, 5, roomRow(4, "Room West", model.RoomKindRestricted, 10), 4)
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomHeads)).
		WithArgs(4).
		WillReturnRows(countRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyByRoom)).
		WithArgs(4).
		WillReturnError(sql.ErrNoRows)

	d, err := ev.EvaluateAccess(context.Background(), 7, 4)
	require.NoError(t, err)
	assert.False(t, d.Granted)
	assert.Equal(t, ReasonNotRestricted, d.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateAccessUnknownResident(t *testing.T) {
	ev, mock := newTestEvaluator(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectResidentByID)).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := ev.EvaluateAccess(context.Background(), 99, 4)
	assert.ErrorIs(t, err, repository.ErrResidentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
