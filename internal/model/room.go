package model

import (
	"strings"
	"time"
)

// RoomKind classifies a room for access decisions. The kind is computed
// once when the room is created and stored on the row; renaming a room
// does not change its kind.
type RoomKind string

const (
	// RoomKindPublic marks common areas (Kitchen, Bathroom, Lobby, ...)
	// that any resident may enter.
	RoomKindPublic RoomKind = "PUBLIC"
	// RoomKindRestricted marks family quarters; entry requires that the
	// resident's family is assigned to the room.
	RoomKindRestricted RoomKind = "RESTRICTED"
	// RoomKindMaintenance marks rooms that no resident may enter.
	RoomKindMaintenance RoomKind = "MAINTENANCE"
)

// ClassifyRoomName derives the RoomKind for a new room from its name.
// The literal name "maintenance room" is off limits, names with the
// "Room" prefix are family quarters, everything else is a common area.
func ClassifyRoomName(name string) RoomKind {
	trimmed := strings.TrimSpace(name)
	if strings.EqualFold(trimmed, "maintenance room") {
		return RoomKindMaintenance
	}
	if strings.HasPrefix(trimmed, "Room") {
		return RoomKindRestricted
	}
	return RoomKindPublic
}

// Room is a capacity-bounded space inside a shelter.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – room name; the naming convention drives the Kind at creation.
//  Kind      – PUBLIC, RESTRICTED or MAINTENANCE; fixed after creation.
//  ShelterID – owning shelter.
//  MaxPeople – how many residents the room holds.
//  CreatedBy – admin who created the room.
type Room struct {
	ID        uint64    `json:"id"`         // rooms.id
	Name      string    `json:"name"`       // rooms.name
	Kind      RoomKind  `json:"kind"`       // rooms.kind
	ShelterID uint64    `json:"shelter_id"` // rooms.shelter_id
	MaxPeople int       `json:"max_people"` // rooms.max_people
	CreatedBy uint64    `json:"created_by"` // rooms.created_by
	CreatedAt time.Time `json:"created_at"` // rooms.created_at
}
