package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
)

// ErrFamilyNotFound is returned when a family lookup fails.
var ErrFamilyNotFound = errors.New("family not found")

// ErrFamilyNameTaken is returned when a family with the same name is
// already assigned to the same room.
var ErrFamilyNameTaken = errors.New("family name already used in this room")

// FamilyRepo provides data access to the families table.
type FamilyRepo struct {
	db *sql.DB
}

// NewFamilyRepo returns a new FamilyRepo bound to the given database.
func NewFamilyRepo(db *sql.DB) *FamilyRepo { return &FamilyRepo{db: db} }

const familyCols = "id, family_name, room_id, shelter_id, created_by, created_at"

func scanFamily(scan func(dest ...any) error) (*model.Family, error) {
	var (
		f      model.Family
		roomID sql.NullInt64
	)
	if err := scan(&f.ID, &f.FamilyName, &roomID, &f.ShelterID, &f.CreatedBy, &f.CreatedAt); err != nil {
		return nil, err
	}
	if roomID.Valid {
		rid := uint64(roomID.Int64)
		f.RoomID = &rid
	}
	return &f, nil
}

// Create inserts a new family. The (family_name, room_id) pair is
// unique; violations map to ErrFamilyNameTaken. The generated ID is
// populated on the provided record.
func (r *FamilyRepo) Create(ctx context.Context, f *model.Family) error {
	const q = `INSERT INTO families (family_name, room_id, shelter_id, created_by) VALUES (?, ?, ?, ?)`
	var roomID any
	if f.RoomID != nil {
		roomID = *f.RoomID
	}
	res, err := r.db.ExecContext(ctx, q, f.FamilyName, roomID, f.ShelterID, f.CreatedBy)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrFamilyNameTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// GetByID retrieves a family by its ID. Returns ErrFamilyNotFound when
// no row is found.
func (r *FamilyRepo) GetByID(ctx context.Context, id uint64) (*model.Family, error) {
	const q = "SELECT " + familyCols + " FROM families WHERE id = ?"
	f, err := scanFamily(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFamilyNotFound
		}
		return nil, err
	}
	return f, nil
}

// GetForUpdateTx retrieves a family inside a transaction and takes a
// row lock on it. The placement engine locks the family first so only
// one placement can mutate a given family's room assignment at a time.
func (r *FamilyRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Family, error) {
	const q = "SELECT " + familyCols + " FROM families WHERE id = ? FOR UPDATE"
	f, err := scanFamily(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFamilyNotFound
		}
		return nil, err
	}
	return f, nil
}

// GetByRoom returns the family currently assigned to the given room.
// Returns ErrFamilyNotFound when no family references the room.
func (r *FamilyRepo) GetByRoom(ctx context.Context, roomID uint64) (*model.Family, error) {
	const q = "SELECT " + familyCols + " FROM families WHERE room_id = ? LIMIT 1"
	f, err := scanFamily(r.db.QueryRowContext(ctx, q, roomID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFamilyNotFound
		}
		return nil, err
	}
	return f, nil
}

// ListByShelter returns all families inside a shelter ordered by id.
func (r *FamilyRepo) ListByShelter(ctx context.Context, shelterID uint64) ([]*model.Family, error) {
	const q = "SELECT " + familyCols + " FROM families WHERE shelter_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, shelterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Family
	for rows.Next() {
		f, err := scanFamily(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByRoom returns the number of families assigned to a room. Room
// deletion uses it to refuse removing quarters that are still in use.
func (r *FamilyRepo) CountByRoom(ctx context.Context, roomID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM families WHERE room_id = ?", roomID).Scan(&n)
	return n, err
}

// AssignRoom reassigns the family's quarters outside of any placement
// flow (manual move by an admin).
func (r *FamilyRepo) AssignRoom(ctx context.Context, id, roomID uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE families SET room_id = ? WHERE id = ?", roomID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFamilyNotFound
	}
	return nil
}

// AssignRoomTx reassigns the family's quarters within a transaction.
// The placement engine persists the relocation through this method so
// the move and the resident insert commit or roll back together.
func (r *FamilyRepo) AssignRoomTx(ctx context.Context, tx *sql.Tx, id, roomID uint64) error {
	res, err := tx.ExecContext(ctx, "UPDATE families SET room_id = ? WHERE id = ?", roomID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFamilyNotFound
	}
	return nil
}

// DeleteTx removes a family row within a transaction. The caller is
// expected to have verified that no resident still references it.
func (r *FamilyRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM families WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFamilyNotFound
	}
	return nil
}
