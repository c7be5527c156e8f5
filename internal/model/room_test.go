package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRoomName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want RoomKind
	}{
		{name: "maintenance literal", in: "maintenance room", want: RoomKindMaintenance},
		{name: "maintenance mixed case", in: "Maintenance Room", want: RoomKindMaintenance},
		{name: "maintenance with spaces", in: "  maintenance room  ", want: RoomKindMaintenance},
		{name: "family quarters", in: "Room Smith", want: RoomKindRestricted},
		{name: "room prefix no space", in: "Room101", want: RoomKindRestricted},
		{name: "lowercase room is public", in: "room Smith", want: RoomKindPublic},
		{name: "kitchen", in: "Kitchen", want: RoomKindPublic},
		{name: "bathroom", in: "Bathroom", want: RoomKindPublic},
		{name: "empty", in: "", want: RoomKindPublic},
		{name: "maintenance as part of longer name", in: "maintenance room 2", want: RoomKindPublic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRoomName(tt.in))
		})
	}
}
