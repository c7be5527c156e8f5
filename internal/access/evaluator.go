// Package access decides whether a resident may enter a room. There is
// no access-control list or token model: the decision is driven by the
// room's kind and, for family quarters, by whether the resident's
// family is the one assigned to the room.
package access

import (
	"context"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

// Decision is the outcome of an access evaluation.
type Decision struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason"`
}

// Decision reasons returned to callers, kept as constants so handlers
// and tests compare against the same strings.
const (
	ReasonMaintenance   = "maintenance room, entry forbidden"
	ReasonRoomFull      = "room is at capacity"
	ReasonPublicRoom    = "public room"
	ReasonFamilyRoom    = "resident's family is assigned to this room"
	ReasonNoFamily      = "room is not assigned to the resident's family"
	ReasonNotRestricted = "no family is assigned to this room"
)

// Evaluator implements the room entry policy. Checks run in a fixed
// order: maintenance denial, capacity denial, public allow, family
// match. On a successful family-room entry the resident's room
// assignment is persisted as the room last accessed.
type Evaluator struct {
	residents *repository.ResidentRepo
	rooms     *repository.RoomRepo
	families  *repository.FamilyRepo
}

// NewEvaluator constructs an access evaluator. All dependencies must
// be non-nil.
func NewEvaluator(residents *repository.ResidentRepo, rooms *repository.RoomRepo, families *repository.FamilyRepo) *Evaluator {
	if residents == nil || rooms == nil || families == nil {
		panic("nil repository passed to access.NewEvaluator")
	}
	return &Evaluator{residents: residents, rooms: rooms, families: families}
}

// EvaluateAccess decides whether the resident may enter the room.
// It returns repository.ErrResidentNotFound / repository.ErrRoomNotFound
// when either id does not resolve; any other error is a store failure.
func (e *Evaluator) EvaluateAccess(ctx context.Context, residentID, roomID uint64) (Decision, error) {
	res, err := e.residents.GetByID(ctx, residentID)
	if err != nil {
		return Decision{}, err
	}
	room, err := e.rooms.GetByID(ctx, roomID)
	if err != nil {
		return Decision{}, err
	}

	if room.Kind == model.RoomKindMaintenance {
		return Decision{Granted: false, Reason: ReasonMaintenance}, nil
	}

	occupants, err := e.residents.CountByRoom(ctx, room.ID)
	if err != nil {
		return Decision{}, err
	}
	if occupants >= room.MaxPeople {
		return Decision{Granted: false, Reason: ReasonRoomFull}, nil
	}

	if room.Kind == model.RoomKindPublic {
		return Decision{Granted: true, Reason: ReasonPublicRoom}, nil
	}

	// Restricted room: entry requires the resident's family to be the
	// one currently assigned to it.
	fam, err := e.families.GetByRoom(ctx, room.ID)
	if err != nil {
		if err == repository.ErrFamilyNotFound {
			return Decision{Granted: false, Reason: ReasonNotRestricted}, nil
		}
		return Decision{}, err
	}
	if res.FamilyID != nil && *res.FamilyID == fam.ID {
		// Record the room the resident just entered.
		if err := e.residents.AssignRoom(ctx, res.ID, room.ID); err != nil {
			return Decision{}, err
		}
		return Decision{Granted: true, Reason: ReasonFamilyRoom}, nil
	}
	return Decision{Granted: false, Reason: ReasonNoFamily}, nil
}
