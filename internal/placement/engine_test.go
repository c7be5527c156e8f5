package placement

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
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

const (
	selectFamilyForUpdate = "SELECT id, family_name, room_id, shelter_id, created_by, created_at FROM families WHERE id = ? FOR UPDATE"
	selectDuplicateCount  = "SELECT COUNT(*) FROM residents WHERE family_id = ? AND room_id = ? AND name = ? AND surname = ?"
	selectShelterByID     = "SELECT id, name, address, phone, max_people, energy_level, water_level, radiation_level, created_at, updated_at FROM shelters WHERE id = ?"
	selectFamilyCount     = "SELECT COUNT(*) FROM residents WHERE family_id = ?"
	selectRoomForUpdate   = "SELECT id, name, kind, shelter_id, max_people, created_by, created_at FROM rooms WHERE id = ? FOR UPDATE"
	selectFamilyRoomCount = "SELECT COUNT(*) FROM residents WHERE family_id = ? AND room_id = ?"
	selectSpareRoom       = "SELECT id, name, kind, shelter_id, max_people, created_by, created_at FROM rooms WHERE shelter_id = ? AND max_people > ? ORDER BY id LIMIT 1 FOR UPDATE"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := NewEngine(db,
		repository.NewFamilyRepo(db),
		repository.NewRoomRepo(db),
		repository.NewResidentRepo(db),
		repository.NewShelterRepo(db),
	)
	e.now = func() time.Time { return fixedNow }
	return e, mock
}

func familyRow(id uint64, name string, roomID any, shelterID uint64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "family_name", "room_id", "shelter_id", "created_by", "created_at"}).
		AddRow(id, name, roomID, shelterID, 1, fixedNow)
}

func shelterRow(id uint64, maxPeople int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "address", "phone", "max_people",
		"energy_level", "water_level", "radiation_level", "created_at", "updated_at"}).
		AddRow(id, "Vault 7", "1 Main St", "555-0100", maxPeople, 100, 100, 0, fixedNow, fixedNow)
}

func roomRow(id uint64, name string, kind model.RoomKind, shelterID uint64, maxPeople int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "kind", "shelter_id", "max_people", "created_by", "created_at"}).
		AddRow(id, name, string(kind), shelterID, maxPeople, 1, fixedNow)
}

func countRow(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(n)
}

func TestPlaceResidentFamilyNotFound(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyForUpdate)).
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := e.PlaceResident(context.Background(), NewResident{
		Name: "Ada", Surname: "Smith", FamilyID: 42, CreatedBy: 1,
	})
	assert.ErrorIs(t, err, repository.ErrFamilyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceResidentFamilyWithoutRoom(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyForUpdate)).
		WithArgs(5).
		WillReturnRows(familyRow(5, "Smith", nil, 1))
	mock.ExpectRollback()

	_, err := e.PlaceResident(context.Background(), NewResident{
		Name: "Ada", Surname: "Smith", FamilyID: 5, CreatedBy: 1,
	})
	assert.ErrorIs(t, err, ErrFamilyHasNoRoom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceResidentDuplicateRejected(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyForUpdate)).
		WithArgs(5).
		WillReturnRows(familyRow(5, "Smith", 3, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectDuplicateCount)).
		WithArgs(5, 3, "Ada", "Smith").
		WillReturnRows(countRow(1))
	mock.ExpectRollback()

	_, err := e.PlaceResident(context.Background(), NewResident{
		Name: "Ada", Surname: "Smith", FamilyID: 5, CreatedBy: 1,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateResident)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceResidentShelterFull(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyForUpdate)).
		WithArgs(5).
		WillReturnRows(familyRow(5, "Smith", 3, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectDuplicateCount)).
		WithArgs(5, 3, "Ada", "Smith").
		WillReturnRows(countRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(selectShelterByID)).
		WithArgs(1).
		WillReturnRows(shelterRow(1, 4))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyCount)).
		WithArgs(5).
		WillReturnRows(countRow(4))
	mock.ExpectRollback()

	_, err := e.PlaceResident(context.Background(), NewResident{
		Name: "Ada", Surname: "Smith", FamilyID: 5, CreatedBy: 1,
	})
	assert.ErrorIs(t, err, ErrShelterFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceResidentFitsInCurrentRoom(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyForUpdate)).
		WithArgs(5).
		WillReturnRows(familyRow(5, "Smith", 3, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectDuplicateCount)).
		WithArgs(5, 3, "Ada", "Smith").
		WillReturnRows(countRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(selectShelterByID)).
		WithArgs(1).
		WillReturnRows(shelterRow(1, 100))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyCount)).
		WithArgs(5).
		WillReturnRows(countRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomForUpdate)).
		WithArgs(3).
		WillReturnRows(roomRow(3, "Room Smith", model.RoomKindRestricted, 1, 4))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyRoomCount)).
		WithArgs(5, 3).
		WillReturnRows(countRow(2))
	mock.ExpectExec("INSERT INTO residents").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	res, err := e.PlaceResident(context.Background(), NewResident{
		Name: "Ada", Surname: "Smith", BirthDate: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		Gender: "F", FamilyID: 5, CreatedBy: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(11), res.ID)
	require.NotNil(t, res.RoomID)
	assert.Equal(t, uint64(3), *res.RoomID)
	require.NotNil(t, res.FamilyID)
	assert.Equal(t, uint64(5), *res.FamilyID)
	assert.Equal(t, fixedNow, res.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceResidentMovesFamilyToSpareRoom(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyForUpdate)).
		WithArgs(5).
		WillReturnRows(familyRow(5, "Smith", 3, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectDuplicateCount)).
		WithArgs(5, 3, "Ada", "Smith").
		WillReturnRows(countRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(selectShelterByID)).
		WithArgs(1).
		WillReturnRows(shelterRow(1, 100))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyCount)).
		WithArgs(5).
		WillReturnRows(countRow(2))
	// current room is full: 2 occupants, capacity 2
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomForUpdate)).
		WithArgs(3).
		WillReturnRows(roomRow(3, "Room Smith", model.RoomKindRestricted, 1, 2))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyRoomCount)).
		WithArgs(5, 3).
		WillReturnRows(countRow(2))
	// a room with capacity > 2 exists in the shelter
	mock.ExpectQuery(regexp.QuoteMeta(selectSpareRoom)).
		WithArgs(1, 2).
		WillReturnRows(roomRow(9, "Room West", model.RoomKindRestricted, 1, 6))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE families SET room_id = ? WHERE id = ?")).
		WithArgs(9, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO residents").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	res, err := e.PlaceResident(context.Background(), NewResident{
		Name: "Ada", Surname: "Smith", FamilyID: 5, CreatedBy: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, res.RoomID)
	assert.Equal(t, uint64(9), *res.RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceResidentCreatesExactFitRoom(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyForUpdate)).
		WithArgs(5).
		WillReturnRows(familyRow(5, "Smith", 3, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectDuplicateCount)).
		WithArgs(5, 3, "Ada", "Smith").
		WillReturnRows(countRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(selectShelterByID)).
		WithArgs(1).
		WillReturnRows(shelterRow(1, 100))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyCount)).
		WithArgs(5).
		WillReturnRows(countRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomForUpdate)).
		WithArgs(3).
		WillReturnRows(roomRow(3, "Room Smith", model.RoomKindRestricted, 1, 3))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyRoomCount)).
		WithArgs(5, 3).
		WillReturnRows(countRow(3))
	// no spare room anywhere in the shelter
	mock.ExpectQuery(regexp.QuoteMeta(selectSpareRoom)).
		WithArgs(1, 3).
		WillReturnError(sql.ErrNoRows)
	// new family room sized for the three members plus the newcomer
	mock.ExpectExec("INSERT INTO rooms").
		WithArgs("Room Smith", model.RoomKindRestricted, 1, 4, 1).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE families SET room_id = ? WHERE id = ?")).
		WithArgs(9, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO residents").
		WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectCommit()

	res, err := e.PlaceResident(context.Background(), NewResident{
		Name: "Ada", Surname: "Smith", FamilyID: 5, CreatedBy: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, res.RoomID)
	assert.Equal(t, uint64(9), *res.RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceResidentCreatesSuffixedRoomWhenNameTaken(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyForUpdate)).
		WithArgs(5).
		WillReturnRows(familyRow(5, "Smith", 3, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectDuplicateCount)).
		WithArgs(5, 3, "Ada", "Smith").
		WillReturnRows(countRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(selectShelterByID)).
		WithArgs(1).
		WillReturnRows(shelterRow(1, 100))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyCount)).
		WithArgs(5).
		WillReturnRows(countRow(4))
	// the family already sits in the room an earlier rebalance created,
	// and has filled it again
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomForUpdate)).
		WithArgs(3).
		WillReturnRows(roomRow(3, "Room Smith", model.RoomKindRestricted, 1, 4))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyRoomCount)).
		WithArgs(5, 3).
		WillReturnRows(countRow(4))
	mock.ExpectQuery(regexp.QuoteMeta(selectSpareRoom)).
		WithArgs(1, 4).
		WillReturnError(sql.ErrNoRows)
	// the bare name is taken by the family's current room
	mock.ExpectExec("INSERT INTO rooms").
		WithArgs("Room Smith", model.RoomKindRestricted, 1, 5, 1).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'Room Smith-1' for key 'rooms.uq_rooms_name_shelter'"))
	mock.ExpectExec("INSERT INTO rooms").
		WithArgs("Room Smith 2", model.RoomKindRestricted, 1, 5, 1).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE families SET room_id = ? WHERE id = ?")).
		WithArgs(9, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO residents").
		WillReturnResult(sqlmock.NewResult(14, 1))
	mock.ExpectCommit()

	res, err := e.PlaceResident(context.Background(), NewResident{
		Name: "Ada", Surname: "Smith", FamilyID: 5, CreatedBy: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, res.RoomID)
	assert.Equal(t, uint64(9), *res.RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceResidentRollsBackOnInsertFailure(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyForUpdate)).
		WithArgs(5).
		WillReturnRows(familyRow(5, "Smith", 3, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectDuplicateCount)).
		WithArgs(5, 3, "Ada", "Smith").
		WillReturnRows(countRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(selectShelterByID)).
		WithArgs(1).
		WillReturnRows(shelterRow(1, 100))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyCount)).
		WithArgs(5).
		WillReturnRows(countRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(selectRoomForUpdate)).
		WithArgs(3).
		WillReturnRows(roomRow(3, "Room Smith", model.RoomKindRestricted, 1, 4))
	mock.ExpectQuery(regexp.QuoteMeta(selectFamilyRoomCount)).
		WithArgs(5, 3).
		WillReturnRows(countRow(1))
	mock.ExpectExec("INSERT INTO residents").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := e.PlaceResident(context.Background(), NewResident{
		Name: "Ada", Surname: "Smith", FamilyID: 5, CreatedBy: 1,
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
