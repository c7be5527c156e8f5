// This file defines repository methods for shelters. A Shelter is the
// top-level facility container; rooms and families reference it, and
// the resource gauges (energy, water, radiation) are updated against
// one configured default shelter.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
)

// ErrShelterNotFound is returned when a shelter lookup fails.
var ErrShelterNotFound = errors.New("shelter not found")

// ErrNoShelterConfigured is returned by gauge operations when the
// configured default shelter row does not exist. The service assumes
// that row is provisioned at install time, so handlers surface this as
// a server-side failure rather than a client error.
var ErrNoShelterConfigured = errors.New("no shelter configured")

// ShelterRepo encapsulates all database queries related to shelters.
type ShelterRepo struct {
	db *sql.DB
}

// NewShelterRepo constructs a ShelterRepo with the provided DB handle.
func NewShelterRepo(db *sql.DB) *ShelterRepo {
	return &ShelterRepo{db: db}
}

const shelterCols = "id, name, address, phone, max_people, energy_level, water_level, radiation_level, created_at, updated_at"

func scanShelter(row *sql.Row, s *model.Shelter) error {
	return row.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.MaxPeople,
		&s.EnergyLevel, &s.WaterLevel, &s.RadiationLevel, &s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a new shelter. On success the shelter's ID field is
// populated and a follow-up SELECT fills the timestamp fields so that
// callers receive a fully populated record.
func (r *ShelterRepo) Create(ctx context.Context, s *model.Shelter) error {
	const qInsert = `INSERT INTO shelters (name, address, phone, max_people, energy_level, water_level, radiation_level)
	                 VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, s.Name, s.Address, s.Phone, s.MaxPeople,
		s.EnergyLevel, s.WaterLevel, s.RadiationLevel)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	const qSelect = "SELECT " + shelterCols + " FROM shelters WHERE id = ?"
	return scanShelter(r.db.QueryRowContext(ctx, qSelect, s.ID), s)
}

// GetByID fetches a shelter by its ID. It returns ErrShelterNotFound
// when no row is found.
func (r *ShelterRepo) GetByID(ctx context.Context, id uint64) (*model.Shelter, error) {
	const q = "SELECT " + shelterCols + " FROM shelters WHERE id = ?"
	var s model.Shelter
	if err := scanShelter(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShelterNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetDefault fetches the configured default shelter used by the gauge
// endpoints. A missing row maps to ErrNoShelterConfigured.
func (r *ShelterRepo) GetDefault(ctx context.Context, id uint64) (*model.Shelter, error) {
	s, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrShelterNotFound) {
		return nil, ErrNoShelterConfigured
	}
	return s, err
}

// GetByIDTx fetches a shelter inside an existing transaction. The
// placement engine uses it so the shelter capacity check reads the same
// snapshot as the rest of the placement operation.
func (r *ShelterRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Shelter, error) {
	const q = "SELECT " + shelterCols + " FROM shelters WHERE id = ?"
	var s model.Shelter
	err := tx.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.MaxPeople,
		&s.EnergyLevel, &s.WaterLevel, &s.RadiationLevel, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShelterNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns all shelters ordered by id.
func (r *ShelterRepo) List(ctx context.Context) ([]*model.Shelter, error) {
	const q = "SELECT " + shelterCols + " FROM shelters ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Shelter
	for rows.Next() {
		s := new(model.Shelter)
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.MaxPeople,
			&s.EnergyLevel, &s.WaterLevel, &s.RadiationLevel, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateContact updates the name/address/phone fields of a shelter.
// Returns ErrShelterNotFound when no row matches.
func (r *ShelterRepo) UpdateContact(ctx context.Context, id uint64, name, address, phone string) error {
	const q = `UPDATE shelters SET name = ?, address = ?, phone = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, name, address, phone, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShelterNotFound
	}
	return nil
}

// UpdateMaxPeople changes the shelter occupancy ceiling.
func (r *ShelterRepo) UpdateMaxPeople(ctx context.Context, id uint64, maxPeople int) error {
	return r.updateIntColumn(ctx, "max_people", id, maxPeople)
}

// SetEnergyLevel stores a new energy gauge reading.
func (r *ShelterRepo) SetEnergyLevel(ctx context.Context, id uint64, level int) error {
	return r.updateIntColumn(ctx, "energy_level", id, level)
}

// SetWaterLevel stores a new water gauge reading.
func (r *ShelterRepo) SetWaterLevel(ctx context.Context, id uint64, level int) error {
	return r.updateIntColumn(ctx, "water_level", id, level)
}

// SetRadiationLevel stores a new radiation gauge reading.
func (r *ShelterRepo) SetRadiationLevel(ctx context.Context, id uint64, level int) error {
	return r.updateIntColumn(ctx, "radiation_level", id, level)
}

// updateIntColumn updates a single integer column. The column name is
// always one of the fixed literals above, never user input.
func (r *ShelterRepo) updateIntColumn(ctx context.Context, column string, id uint64, value int) error {
	q := "UPDATE shelters SET " + column + " = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, value, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShelterNotFound
	}
	return nil
}
