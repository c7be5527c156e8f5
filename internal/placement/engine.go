// Package placement implements the resident placement and room
// rebalancing flow. Creating a resident is the one operation in the
// service with multi-step invariants: the family must exist and have
// quarters, the person must not already be registered, the shelter
// ceiling must not be reached, and the family's room must still have
// space, otherwise the family is relocated to a room that fits,
// creating one when the shelter has none spare. All of it commits or
// rolls back as a single transaction.
package placement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

// ErrFamilyHasNoRoom is returned when the target family exists but has
// no room assignment; residents cannot be placed into such a family.
var ErrFamilyHasNoRoom = errors.New("family has no room assigned")

// ErrShelterFull is returned when the family's resident count has
// already reached the shelter occupancy ceiling. The check is
// independent of room capacity: a shelter can be full while rooms
// still have space, and vice versa.
var ErrShelterFull = errors.New("shelter is full")

// NewResident carries the caller-supplied fields for a placement.
type NewResident struct {
	Name      string
	Surname   string
	BirthDate time.Time
	Gender    string
	FamilyID  uint64
	CreatedBy uint64
}

// Engine decides where a new resident lands. It owns no state beyond
// its repository handles; every call runs inside one transaction with
// row locks on the family and its current room, so concurrent
// placements into the same family or room serialize on the capacity
// checks instead of racing past them.
type Engine struct {
	db        *sql.DB
	families  *repository.FamilyRepo
	rooms     *repository.RoomRepo
	residents *repository.ResidentRepo
	shelters  *repository.ShelterRepo
	now       func() time.Time
}

// NewEngine constructs a placement engine. All dependencies must be
// non-nil.
func NewEngine(db *sql.DB, families *repository.FamilyRepo, rooms *repository.RoomRepo, residents *repository.ResidentRepo, shelters *repository.ShelterRepo) *Engine {
	if db == nil || families == nil || rooms == nil || residents == nil || shelters == nil {
		panic("nil dependency passed to placement.NewEngine")
	}
	return &Engine{
		db:        db,
		families:  families,
		rooms:     rooms,
		residents: residents,
		shelters:  shelters,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PlaceResident validates the placement, rebalances the family's room
// assignment when its current room is out of space, and inserts the
// resident. On success the returned resident carries the generated ID
// and the room the person actually landed in, which is the family's
// (possibly just-updated) room.
//
// Error values callers should branch on: repository.ErrFamilyNotFound,
// ErrFamilyHasNoRoom, repository.ErrDuplicateResident, ErrShelterFull.
// Anything else is a store failure; in every case the transaction is
// rolled back and no partial state survives.
func (e *Engine) PlaceResident(ctx context.Context, in NewResident) (*model.Resident, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the family row first. This serializes placements per family
	// so only one call at a time can move the family's quarters.
	fam, err := e.families.GetForUpdateTx(ctx, tx, in.FamilyID)
	if err != nil {
		return nil, err
	}
	if fam.RoomID == nil {
		return nil, ErrFamilyHasNoRoom
	}

	dup, err := e.residents.ExistsDuplicateTx(ctx, tx, fam.ID, *fam.RoomID, in.Name, in.Surname)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, repository.ErrDuplicateResident
	}

	// Shelter ceiling. The count covers the family's residents across
	// all rooms; a missing shelter row skips the check rather than
	// failing the placement.
	shelter, err := e.shelters.GetByIDTx(ctx, tx, fam.ShelterID)
	switch {
	case err == nil:
		famCount, err := e.residents.CountByFamilyTx(ctx, tx, fam.ID)
		if err != nil {
			return nil, err
		}
		if famCount >= shelter.MaxPeople {
			return nil, ErrShelterFull
		}
	case errors.Is(err, repository.ErrShelterNotFound):
		// no ceiling to enforce
	default:
		return nil, err
	}

	room, err := e.rooms.GetForUpdateTx(ctx, tx, *fam.RoomID)
	if err != nil {
		return nil, err
	}
	inRoom, err := e.residents.CountByFamilyAndRoomTx(ctx, tx, fam.ID, room.ID)
	if err != nil {
		return nil, err
	}

	targetRoomID := room.ID
	if inRoom+1 > room.MaxPeople {
		targetRoomID, err = e.relocateFamily(ctx, tx, fam, inRoom, in.CreatedBy)
		if err != nil {
			return nil, err
		}
	}

	res := &model.Resident{
		Name:      in.Name,
		Surname:   in.Surname,
		BirthDate: in.BirthDate,
		Gender:    in.Gender,
		FamilyID:  &fam.ID,
		RoomID:    &targetRoomID,
		CreatedBy: in.CreatedBy,
		CreatedAt: e.now(),
	}
	if err := e.residents.CreateTx(ctx, tx, res); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

// maxRoomNameAttempts bounds the suffix search when a generated room
// name is already taken in the shelter.
const maxRoomNameAttempts = 50

// relocateFamily moves the family to a room that fits its current
// members plus the incoming resident. An existing room in the same
// shelter with capacity above the current count is preferred; note the
// search does not check whether another family already sits there.
// When nothing fits, a new family room is created sized exactly for
// the existing members plus one, with no slack. Room names are unique
// per shelter, and a family that has outgrown a previously created
// room collides on the bare family name, so the insert retries with a
// numeric suffix until it lands on a free name.
func (e *Engine) relocateFamily(ctx context.Context, tx *sql.Tx, fam *model.Family, occupants int, createdBy uint64) (uint64, error) {
	spare, err := e.rooms.FindSpareInShelterTx(ctx, tx, fam.ShelterID, occupants)
	switch {
	case err == nil:
		if err := e.families.AssignRoomTx(ctx, tx, fam.ID, spare.ID); err != nil {
			return 0, err
		}
		return spare.ID, nil
	case errors.Is(err, repository.ErrRoomNotFound):
		newRoom := &model.Room{
			Name:      "Room " + fam.FamilyName,
			Kind:      model.RoomKindRestricted,
			ShelterID: fam.ShelterID,
			MaxPeople: occupants + 1,
			CreatedBy: createdBy,
		}
		for attempt := 2; ; attempt++ {
			err := e.rooms.CreateTx(ctx, tx, newRoom)
			if err == nil {
				break
			}
			if attempt > maxRoomNameAttempts || !strings.Contains(strings.ToLower(err.Error()), "1062") {
				return 0, err
			}
			newRoom.Name = fmt.Sprintf("Room %s %d", fam.FamilyName, attempt)
		}
		if err := e.families.AssignRoomTx(ctx, tx, fam.ID, newRoom.ID); err != nil {
			return 0, err
		}
		return newRoom.ID, nil
	default:
		return 0, err
	}
}
