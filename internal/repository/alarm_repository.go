package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
)

// ErrAlarmNotFound is returned when an alarm lookup fails.
var ErrAlarmNotFound = errors.New("alarm not found")

// ErrAlarmExists is returned when an explicit-id alarm creation reuses
// an id that is already present for that room.
var ErrAlarmExists = errors.New("alarm already exists for this room")

// ErrAlarmEnded is returned when trying to end an alarm that has
// already been closed.
var ErrAlarmEnded = errors.New("alarm already ended")

// AlarmRepo provides data access to the alarms table. Alarms are
// created either with an explicit id chosen by the caller, or with a
// store-assigned id targeting the configured alarm room.
type AlarmRepo struct {
	db *sql.DB
}

// NewAlarmRepo returns a new AlarmRepo bound to the given database.
func NewAlarmRepo(db *sql.DB) *AlarmRepo { return &AlarmRepo{db: db} }

const alarmCols = "id, started_at, ended_at, room_id, created_at"

func scanAlarm(scan func(dest ...any) error) (*model.Alarm, error) {
	var (
		a       model.Alarm
		endedAt sql.NullTime
	)
	if err := scan(&a.ID, &a.StartedAt, &endedAt, &a.RoomID, &a.CreatedAt); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		a.EndedAt = &t
	}
	return &a, nil
}

// CreateWithID inserts an alarm with a caller-chosen id. A duplicate
// (id, room) pair maps to ErrAlarmExists.
func (r *AlarmRepo) CreateWithID(ctx context.Context, a *model.Alarm) error {
	const q = `INSERT INTO alarms (id, started_at, room_id) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.StartedAt, a.RoomID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrAlarmExists
		}
		return err
	}
	return nil
}

// Create inserts an alarm with a store-assigned id and populates the
// generated value on the record.
func (r *AlarmRepo) Create(ctx context.Context, a *model.Alarm) error {
	const q = `INSERT INTO alarms (started_at, room_id) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.StartedAt, a.RoomID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID retrieves an alarm by its ID.
func (r *AlarmRepo) GetByID(ctx context.Context, id uint64) (*model.Alarm, error) {
	const q = "SELECT " + alarmCols + " FROM alarms WHERE id = ?"
	a, err := scanAlarm(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlarmNotFound
		}
		return nil, err
	}
	return a, nil
}

// End closes an open alarm by stamping ended_at. Ending an alarm that
// is already closed maps to ErrAlarmEnded.
func (r *AlarmRepo) End(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE alarms SET ended_at = NOW() WHERE id = ? AND ended_at IS NULL", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing row from one already ended.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlarmEnded
	}
	return nil
}

// ListOpen returns all alarms that have not ended yet, newest first.
func (r *AlarmRepo) ListOpen(ctx context.Context) ([]*model.Alarm, error) {
	return r.list(ctx, "SELECT "+alarmCols+" FROM alarms WHERE ended_at IS NULL ORDER BY started_at DESC")
}

// ListByRoom returns all alarms raised for a room, newest first.
func (r *AlarmRepo) ListByRoom(ctx context.Context, roomID uint64) ([]*model.Alarm, error) {
	return r.list(ctx, "SELECT "+alarmCols+" FROM alarms WHERE room_id = ? ORDER BY started_at DESC", roomID)
}

// CountOpenByRoom returns the number of open alarms on a room.
func (r *AlarmRepo) CountOpenByRoom(ctx context.Context, roomID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM alarms WHERE room_id = ? AND ended_at IS NULL", roomID).Scan(&n)
	return n, err
}

func (r *AlarmRepo) list(ctx context.Context, q string, args ...any) ([]*model.Alarm, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Alarm
	for rows.Next() {
		a, err := scanAlarm(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
