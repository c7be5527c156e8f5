package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
)

// ErrMachineNotFound is returned when a machine lookup fails.
var ErrMachineNotFound = errors.New("machine not found")

// ErrMachineNameTaken is returned when a machine with the same name
// already exists in the same room.
var ErrMachineNameTaken = errors.New("machine name already used in this room")

// MachineRepo provides data access to the machines table.
type MachineRepo struct {
	db *sql.DB
}

// NewMachineRepo returns a new MachineRepo bound to the given database.
func NewMachineRepo(db *sql.DB) *MachineRepo { return &MachineRepo{db: db} }

const machineCols = "id, name, active, room_id, created_by, created_at, updated_at"

func scanMachine(scan func(dest ...any) error) (*model.Machine, error) {
	var (
		m         model.Machine
		updatedAt sql.NullTime
	)
	if err := scan(&m.ID, &m.Name, &m.Active, &m.RoomID, &m.CreatedBy, &m.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		m.UpdatedAt = &t
	}
	return &m, nil
}

// Create inserts a new machine. The (name, room_id) pair is unique;
// violations map to ErrMachineNameTaken.
func (r *MachineRepo) Create(ctx context.Context, m *model.Machine) error {
	const q = `INSERT INTO machines (name, active, room_id, created_by) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Name, m.Active, m.RoomID, m.CreatedBy)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrMachineNameTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID retrieves a machine by its ID. Returns ErrMachineNotFound
// when no row is found.
func (r *MachineRepo) GetByID(ctx context.Context, id uint64) (*model.Machine, error) {
	const q = "SELECT " + machineCols + " FROM machines WHERE id = ?"
	m, err := scanMachine(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListByRoom returns all machines installed in a room ordered by id.
func (r *MachineRepo) ListByRoom(ctx context.Context, roomID uint64) ([]*model.Machine, error) {
	const q = "SELECT " + machineCols + " FROM machines WHERE room_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Machine
	for rows.Next() {
		m, err := scanMachine(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByRoom returns how many machines are installed in a room.
func (r *MachineRepo) CountByRoom(ctx context.Context, roomID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM machines WHERE room_id = ?", roomID).Scan(&n)
	return n, err
}

// Rename updates the machine name, keeping per-room uniqueness.
func (r *MachineRepo) Rename(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE machines SET name = ?, updated_at = ? WHERE id = ?",
		name, time.Now().UTC(), id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrMachineNameTaken
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMachineNotFound
	}
	return nil
}

// SetActive switches the machine on or off.
func (r *MachineRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE machines SET active = ?, updated_at = ? WHERE id = ?",
		active, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMachineNotFound
	}
	return nil
}

// Delete removes a machine row.
func (r *MachineRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM machines WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMachineNotFound
	}
	return nil
}
