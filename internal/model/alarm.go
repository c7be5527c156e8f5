package model

import "time"

// Alarm records an alert raised for a room. EndedAt is nil while the
// alarm is still open. Alarms are created either with an explicit ID
// for a chosen room, or with a store-assigned ID targeting the
// configured alarm room.
type Alarm struct {
	ID        uint64     `json:"id"`         // alarms.id
	StartedAt time.Time  `json:"started_at"` // alarms.started_at
	EndedAt   *time.Time `json:"ended_at"`   // alarms.ended_at (nullable)
	RoomID    uint64     `json:"room_id"`    // alarms.room_id
	CreatedAt time.Time  `json:"created_at"` // alarms.created_at
}
