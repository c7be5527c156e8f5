package model

import "time"

// Shelter is the top-level facility container. It carries the overall
// occupancy ceiling (MaxPeople) together with three resource gauges that
// are mutated by external monitoring equipment through the API. The
// service operates against one configured default shelter for gauge
// updates, but any number of shelter rows may exist.
//
// Fields:
//  ID             – primary key identifier.
//  Name           – human readable shelter name.
//  Address        – postal address of the facility.
//  Phone          – contact phone number.
//  MaxPeople      – total occupancy ceiling across all rooms.
//  EnergyLevel    – energy reserve gauge (externally mutated).
//  WaterLevel     – water reserve gauge (externally mutated).
//  RadiationLevel – measured radiation gauge (externally mutated).
type Shelter struct {
	ID             uint64    `json:"id"`              // shelters.id
	Name           string    `json:"name"`            // shelters.name
	Address        string    `json:"address"`         // shelters.address
	Phone          string    `json:"phone"`           // shelters.phone
	MaxPeople      int       `json:"max_people"`      // shelters.max_people
	EnergyLevel    int       `json:"energy_level"`    // shelters.energy_level
	WaterLevel     int       `json:"water_level"`     // shelters.water_level
	RadiationLevel int       `json:"radiation_level"` // shelters.radiation_level
	CreatedAt      time.Time `json:"created_at"`      // shelters.created_at
	UpdatedAt      time.Time `json:"updated_at"`      // shelters.updated_at
}
