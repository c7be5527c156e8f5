// Package queue defines message payloads exchanged over the message broker.
package queue

// AlarmRaisedEvent is published when an alarm is raised in a room. It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type AlarmRaisedEvent struct {
	AlarmID     uint64 `json:"alarm_id"`
	RoomID      uint64 `json:"room_id"`
	RoomName    string `json:"room_name"`
	ShelterID   uint64 `json:"shelter_id"`
	ShelterName string `json:"shelter_name"`
	StartedAt   string `json:"started_at"`
}
