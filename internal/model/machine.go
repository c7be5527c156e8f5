package model

import "time"

// Machine is a piece of equipment installed in a room. Machine names
// are unique per room; the Active flag tracks the on/off state.
type Machine struct {
	ID        uint64     `json:"id"`         // machines.id
	Name      string     `json:"name"`       // machines.name
	Active    bool       `json:"active"`     // machines.active
	RoomID    uint64     `json:"room_id"`    // machines.room_id
	CreatedBy uint64     `json:"created_by"` // machines.created_by
	CreatedAt time.Time  `json:"created_at"` // machines.created_at
	UpdatedAt *time.Time `json:"updated_at"` // machines.updated_at (nullable)
}
