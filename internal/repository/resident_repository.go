package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
)

// ErrResidentNotFound is returned when a resident lookup fails.
var ErrResidentNotFound = errors.New("resident not found")

// ErrDuplicateResident is returned when a resident with the same
// (family, room, name, surname) tuple already exists.
var ErrDuplicateResident = errors.New("resident already exists in this family and room")

// ResidentRepo provides data access to the residents table. Counting
// helpers come in *Tx variants because the placement engine needs its
// capacity reads and the subsequent insert to observe one consistent
// snapshot.
type ResidentRepo struct {
	db *sql.DB
}

// NewResidentRepo returns a new ResidentRepo bound to the given database.
func NewResidentRepo(db *sql.DB) *ResidentRepo { return &ResidentRepo{db: db} }

const residentCols = "id, name, surname, birth_date, gender, family_id, room_id, created_by, created_at, updated_at"

func scanResident(scan func(dest ...any) error) (*model.Resident, error) {
	var (
		res       model.Resident
		familyID  sql.NullInt64
		roomID    sql.NullInt64
		updatedAt sql.NullTime
	)
	if err := scan(&res.ID, &res.Name, &res.Surname, &res.BirthDate, &res.Gender,
		&familyID, &roomID, &res.CreatedBy, &res.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	if familyID.Valid {
		fid := uint64(familyID.Int64)
		res.FamilyID = &fid
	}
	if roomID.Valid {
		rid := uint64(roomID.Int64)
		res.RoomID = &rid
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		res.UpdatedAt = &t
	}
	return &res, nil
}

// CreateTx inserts a resident within an existing transaction and
// populates the generated ID on the record. The caller must commit or
// roll back the transaction.
func (r *ResidentRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Resident) error {
	const q = `INSERT INTO residents (name, surname, birth_date, gender, family_id, room_id, created_by, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var familyID, roomID any
	if res.FamilyID != nil {
		familyID = *res.FamilyID
	}
	if res.RoomID != nil {
		roomID = *res.RoomID
	}
	out, err := tx.ExecContext(ctx, q, res.Name, res.Surname, res.BirthDate, res.Gender,
		familyID, roomID, res.CreatedBy, res.CreatedAt)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// ExistsDuplicateTx reports whether a resident with the same
// (family, room, name, surname) tuple is already present.
func (r *ResidentRepo) ExistsDuplicateTx(ctx context.Context, tx *sql.Tx, familyID, roomID uint64, name, surname string) (bool, error) {
	const q = `SELECT COUNT(*) FROM residents WHERE family_id = ? AND room_id = ? AND name = ? AND surname = ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, familyID, roomID, name, surname).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountByFamilyTx counts all residents belonging to a family,
// regardless of which room they sit in. The shelter capacity check
// compares this count against the shelter ceiling.
func (r *ResidentRepo) CountByFamilyTx(ctx context.Context, tx *sql.Tx, familyID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM residents WHERE family_id = ?", familyID).Scan(&n)
	return n, err
}

// CountByFamilyAndRoomTx counts the residents of one family currently
// assigned to one room. This is the occupancy figure the room capacity
// check and the replacement-room search operate on.
func (r *ResidentRepo) CountByFamilyAndRoomTx(ctx context.Context, tx *sql.Tx, familyID, roomID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM residents WHERE family_id = ? AND room_id = ?", familyID, roomID).Scan(&n)
	return n, err
}

// CountByRoom counts all residents assigned to a room across families.
// The access evaluator uses it for the capacity-full denial.
func (r *ResidentRepo) CountByRoom(ctx context.Context, roomID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM residents WHERE room_id = ?", roomID).Scan(&n)
	return n, err
}

// CountByFamily counts all residents of a family. Family deletion uses
// it to block removal while members exist.
func (r *ResidentRepo) CountByFamily(ctx context.Context, familyID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM residents WHERE family_id = ?", familyID).Scan(&n)
	return n, err
}

// GetByID retrieves a resident by its ID. Returns ErrResidentNotFound
// when no row is found.
func (r *ResidentRepo) GetByID(ctx context.Context, id uint64) (*model.Resident, error) {
	const q = "SELECT " + residentCols + " FROM residents WHERE id = ?"
	res, err := scanResident(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}
	return res, nil
}

// ListByFamily returns all residents of a family ordered by id.
func (r *ResidentRepo) ListByFamily(ctx context.Context, familyID uint64) ([]*model.Resident, error) {
	return r.list(ctx, "SELECT "+residentCols+" FROM residents WHERE family_id = ? ORDER BY id", familyID)
}

// ListByRoom returns all residents assigned to a room ordered by id.
func (r *ResidentRepo) ListByRoom(ctx context.Context, roomID uint64) ([]*model.Resident, error) {
	return r.list(ctx, "SELECT "+residentCols+" FROM residents WHERE room_id = ? ORDER BY id", roomID)
}

func (r *ResidentRepo) list(ctx context.Context, q string, args ...any) ([]*model.Resident, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Resident
	for rows.Next() {
		res, err := scanResident(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateNames changes the resident's name and surname and stamps
// updated_at.
func (r *ResidentRepo) UpdateNames(ctx context.Context, id uint64, name, surname string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE residents SET name = ?, surname = ?, updated_at = ? WHERE id = ?",
		name, surname, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrResidentNotFound
	}
	return nil
}

// AssignRoom persists the room a resident last entered. The access
// evaluator records successful restricted-room entries through this.
func (r *ResidentRepo) AssignRoom(ctx context.Context, id, roomID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE residents SET room_id = ?, updated_at = ? WHERE id = ?",
		roomID, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrResidentNotFound
	}
	return nil
}

// DetachFamily clears the resident's family reference.
func (r *ResidentRepo) DetachFamily(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE residents SET family_id = NULL, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrResidentNotFound
	}
	return nil
}

// Delete removes a resident row.
func (r *ResidentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM residents WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrResidentNotFound
	}
	return nil
}
