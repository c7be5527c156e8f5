package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

func newFamilyHandler(t *testing.T) (*FamilyHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFamilyHandler(db,
		repository.NewFamilyRepo(db),
		repository.NewResidentRepo(db),
		repository.NewRoomRepo(db),
		repository.NewShelterRepo(db),
	), mock
}

func deleteFamilyRequest(h *FamilyHandler, id string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/families/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	_ = h.Delete(c)
	return rec
}

func TestFamilyDeleteBlockedWhileResidentsExist(t *testing.T) {
	h, mock := newFamilyHandler(t)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, family_name, room_id, shelter_id, created_by, created_at FROM families WHERE id = ? FOR UPDATE")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "family_name", "room_id", "shelter_id", "created_by", "created_at"}).
			AddRow(5, "Smith", 3, 1, 1, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM residents WHERE family_id = ?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(2))
	mock.ExpectRollback()

	rec := deleteFamilyRequest(h, "5")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "still has residents")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyDeleteEmptyFamily(t *testing.T) {
	h, mock := newFamilyHandler(t)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, family_name, room_id, shelter_id, created_by, created_at FROM families WHERE id = ? FOR UPDATE")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "family_name", "room_id", "shelter_id", "created_by", "created_at"}).
			AddRow(5, "Smith", 3, 1, 1, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM residents WHERE family_id = ?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM families WHERE id = ?")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := deleteFamilyRequest(h, "5")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyDeleteUnknownFamily(t *testing.T) {
	h, mock := newFamilyHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, family_name, room_id, shelter_id, created_by, created_at FROM families WHERE id = ? FOR UPDATE")).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	rec := deleteFamilyRequest(h, "9")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyDeleteBadID(t *testing.T) {
	h, _ := newFamilyHandler(t)
	rec := deleteFamilyRequest(h, "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
