package model

import "time"

// Resident is an individual occupant. FamilyID and RoomID are nullable;
// a resident created through the placement flow always ends up with both
// set, RoomID defaulting to the family's room at creation time. The
// tuple (family, room, name, surname) is unique so the same person
// cannot be registered twice inside one family/room pair.
type Resident struct {
	ID        uint64     `json:"id"`         // residents.id
	Name      string     `json:"name"`       // residents.name
	Surname   string     `json:"surname"`    // residents.surname
	BirthDate time.Time  `json:"birth_date"` // residents.birth_date
	Gender    string     `json:"gender"`     // residents.gender
	FamilyID  *uint64    `json:"family_id"`  // residents.family_id (nullable)
	RoomID    *uint64    `json:"room_id"`    // residents.room_id (nullable)
	CreatedBy uint64     `json:"created_by"` // residents.created_by
	CreatedAt time.Time  `json:"created_at"` // residents.created_at
	UpdatedAt *time.Time `json:"updated_at"` // residents.updated_at (nullable)
}
