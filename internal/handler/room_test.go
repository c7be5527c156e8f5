package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

func newRoomHandler(t *testing.T) (*RoomHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRoomHandler(
		repository.NewRoomRepo(db),
		repository.NewFamilyRepo(db),
		repository.NewMachineRepo(db),
		repository.NewAlarmRepo(db),
		repository.NewResidentRepo(db),
		repository.NewShelterRepo(db),
	), mock
}

func createRoomRequest(h *RoomHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/rooms", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("admin_id", float64(1))
	_ = h.Create(c)
	return rec
}

func expectShelterLookup(mock sqlmock.Sqlmock, id uint64) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, address, phone, max_people, energy_level, water_level, radiation_level, created_at, updated_at FROM shelters WHERE id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "phone", "max_people",
			"energy_level", "water_level", "radiation_level", "created_at", "updated_at"}).
			AddRow(id, "Vault 7", "", "", 100, 100, 100, 0, now, now))
}

func expectRoomInsert(mock sqlmock.Sqlmock, name, kind string, maxPeople int) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO rooms").
		WithArgs(name, kind, 1, maxPeople, 1).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, kind, shelter_id, max_people, created_by, created_at FROM rooms WHERE id = ?")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "kind", "shelter_id", "max_people", "created_by", "created_at"}).
			AddRow(4, name, kind, 1, maxPeople, 1, now))
}

func TestRoomCreateClassifiesKind(t *testing.T) {
	tests := []struct {
		name     string
		roomName string
		wantKind string
	}{
		{name: "family quarters", roomName: "Room Smith", wantKind: "RESTRICTED"},
		{name: "common area", roomName: "Kitchen", wantKind: "PUBLIC"},
		{name: "maintenance", roomName: "maintenance room", wantKind: "MAINTENANCE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newRoomHandler(t)
			expectShelterLookup(mock, 1)
			expectRoomInsert(mock, tt.roomName, tt.wantKind, 4)

			rec := createRoomRequest(h, `{"name":"`+tt.roomName+`","shelter_id":1,"max_people":4}`)
			require.Equal(t, http.StatusCreated, rec.Code)

			var got struct {
				Kind string `json:"kind"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoomCreateRejectsZeroCapacity(t *testing.T) {
	h, _ := newRoomHandler(t)
	rec := createRoomRequest(h, `{"name":"Kitchen","shelter_id":1,"max_people":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoomCreateUnknownShelter(t *testing.T) {
	h, mock := newRoomHandler(t)
	mock.ExpectQuery("SELECT id, name, address").
		WithArgs(7).
		WillReturnError(sql.ErrNoRows)

	rec := createRoomRequest(h, `{"name":"Kitchen","shelter_id":7,"max_people":4}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
