package model

import "time"

// Family groups residents that share a room assignment. RoomID is
// nullable: a family may exist without quarters, but residents cannot be
// placed into such a family. Family names are unique per room.
type Family struct {
	ID         uint64    `json:"id"`          // families.id
	FamilyName string    `json:"family_name"` // families.family_name
	RoomID     *uint64   `json:"room_id"`     // families.room_id (nullable)
	ShelterID  uint64    `json:"shelter_id"`  // families.shelter_id
	CreatedBy  uint64    `json:"created_by"`  // families.created_by
	CreatedAt  time.Time `json:"created_at"`  // families.created_at
}
