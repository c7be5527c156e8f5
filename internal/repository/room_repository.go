package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
)

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo provides methods to create and retrieve rooms. It embeds a
// database handle to perform queries and commands.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomCols = "id, name, kind, shelter_id, max_people, created_by, created_at"

// Create inserts a new room. The Kind field must already be set by the
// caller (it is computed from the name once, at creation). After the
// insert the ID field of the room will be populated, and the record is
// read back so the timestamp is filled in too.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const qInsert = `INSERT INTO rooms (name, kind, shelter_id, max_people, created_by)
	                 VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, rm.Name, rm.Kind, rm.ShelterID, rm.MaxPeople, rm.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)

	const qSelect = "SELECT " + roomCols + " FROM rooms WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, rm.ID).
		Scan(&rm.ID, &rm.Name, &rm.Kind, &rm.ShelterID, &rm.MaxPeople, &rm.CreatedBy, &rm.CreatedAt)
}

// CreateTx inserts a room within the scope of an existing transaction.
// The placement engine uses it when a family outgrows its quarters and
// a replacement room has to be created atomically with the resident
// insert. The generated ID is populated on the provided record.
func (r *RoomRepo) CreateTx(ctx context.Context, tx *sql.Tx, rm *model.Room) error {
	const q = `INSERT INTO rooms (name, kind, shelter_id, max_people, created_by)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, rm.Name, rm.Kind, rm.ShelterID, rm.MaxPeople, rm.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return nil
}

// GetByID retrieves a room by its ID. It returns ErrRoomNotFound when
// no row is found.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = "SELECT " + roomCols + " FROM rooms WHERE id = ?"
	var rm model.Room
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&rm.ID, &rm.Name, &rm.Kind, &rm.ShelterID, &rm.MaxPeople, &rm.CreatedBy, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// GetForUpdateTx retrieves a room inside a transaction and takes a row
// lock on it. The placement engine locks the family's current room so
// that concurrent placements into the same room serialize on the
// capacity check instead of racing past it.
func (r *RoomRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Room, error) {
	const q = "SELECT " + roomCols + " FROM rooms WHERE id = ? FOR UPDATE"
	var rm model.Room
	err := tx.QueryRowContext(ctx, q, id).
		Scan(&rm.ID, &rm.Name, &rm.Kind, &rm.ShelterID, &rm.MaxPeople, &rm.CreatedBy, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// FindSpareInShelterTx finds a room in the given shelter whose capacity
// exceeds the given occupant count, i.e. a room that still fits the
// occupants plus one more. Any such room is accepted regardless of
// whether another family is already assigned to it. Returns
// ErrRoomNotFound when the shelter has no room with spare capacity.
func (r *RoomRepo) FindSpareInShelterTx(ctx context.Context, tx *sql.Tx, shelterID uint64, occupants int) (*model.Room, error) {
	const q = "SELECT " + roomCols + " FROM rooms WHERE shelter_id = ? AND max_people > ? ORDER BY id LIMIT 1 FOR UPDATE"
	var rm model.Room
	err := tx.QueryRowContext(ctx, q, shelterID, occupants).
		Scan(&rm.ID, &rm.Name, &rm.Kind, &rm.ShelterID, &rm.MaxPeople, &rm.CreatedBy, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// ListByShelter returns all rooms inside a shelter ordered by id.
func (r *RoomRepo) ListByShelter(ctx context.Context, shelterID uint64) ([]*model.Room, error) {
	const q = "SELECT " + roomCols + " FROM rooms WHERE shelter_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, shelterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Room
	for rows.Next() {
		rm := new(model.Room)
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Kind, &rm.ShelterID, &rm.MaxPeople, &rm.CreatedBy, &rm.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Rename updates the room name. The kind is deliberately not
// recomputed: a room keeps the classification it was created with.
func (r *RoomRepo) Rename(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE rooms SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// UpdateMaxPeople changes the room capacity.
func (r *RoomRepo) UpdateMaxPeople(ctx context.Context, id uint64, maxPeople int) error {
	res, err := r.db.ExecContext(ctx, "UPDATE rooms SET max_people = ? WHERE id = ?", maxPeople, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Delete removes a room row. Callers must verify beforehand that no
// family, machine or alarm still references the room.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
