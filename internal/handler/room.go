package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

// RoomHandler exposes room management endpoints. Deleting a room is
// refused while families, machines or open alarms still reference it.
type RoomHandler struct {
	Rooms     *repository.RoomRepo
	Families  *repository.FamilyRepo
	Machines  *repository.MachineRepo
	Alarms    *repository.AlarmRepo
	Residents *repository.ResidentRepo
	Shelters  *repository.ShelterRepo
}

func NewRoomHandler(rooms *repository.RoomRepo, families *repository.FamilyRepo, machines *repository.MachineRepo, alarms *repository.AlarmRepo, residents *repository.ResidentRepo, shelters *repository.ShelterRepo) *RoomHandler {
	if rooms == nil || families == nil || machines == nil || alarms == nil || residents == nil || shelters == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Families: families, Machines: machines, Alarms: alarms, Residents: residents, Shelters: shelters}
}

type roomCreateReq struct {
	Name      string `json:"name"`
	ShelterID uint64 `json:"shelter_id"`
	MaxPeople int    `json:"max_people"`
}

// Create handles POST /v1/rooms. The room kind is derived from the name
// once at creation time and stored; later renames do not change it.
func (h *RoomHandler) Create(c echo.Context) error {
	adminID, err := getAdminID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body roomCreateReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if body.MaxPeople <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "max_people must be positive"})
	}
	ctx := c.Request().Context()
	if _, err := h.Shelters.GetByID(ctx, body.ShelterID); err != nil {
		if err == repository.ErrShelterNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "shelter not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	room := &model.Room{
		Name:      name,
		Kind:      model.ClassifyRoomName(name),
		ShelterID: body.ShelterID,
		MaxPeople: body.MaxPeople,
		CreatedBy: adminID,
	}
	if err := h.Rooms.Create(ctx, room); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "room name already exists in shelter"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create room"})
	}
	return c.JSON(http.StatusCreated, room)
}

// Get handles GET /v1/rooms/:id and includes the current occupancy.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	occupants, err := h.Residents.CountByRoom(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room":      room,
		"occupants": occupants,
	})
}

// ListByShelter handles GET /v1/shelters/:id/rooms.
func (h *RoomHandler) ListByShelter(c echo.Context) error {
	shelterID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	out, err := h.Rooms.ListByShelter(c.Request().Context(), shelterID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

// Rename handles PATCH /v1/rooms/:id/name. The stored kind is kept as
// classified at creation.
func (h *RoomHandler) Rename(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	ctx := c.Request().Context()
	if err := h.Rooms.Rename(ctx, id, name); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
		}
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "room name already exists in shelter"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	updated, _ := h.Rooms.GetByID(ctx, id)
	return c.JSON(http.StatusOK, updated)
}

// UpdateCapacity handles PATCH /v1/rooms/:id/capacity.
func (h *RoomHandler) UpdateCapacity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		MaxPeople int `json:"max_people"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.MaxPeople <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "max_people must be positive"})
	}
	ctx := c.Request().Context()
	if err := h.Rooms.UpdateMaxPeople(ctx, id, body.MaxPeople); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	updated, _ := h.Rooms.GetByID(ctx, id)
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/rooms/:id. Rooms still referenced by
// families, residents, machines or open alarms cannot be removed.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Rooms.GetByID(ctx, id); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if n, err := h.Families.CountByRoom(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	} else if n > 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "room has families assigned"})
	}
	if n, err := h.Residents.CountByRoom(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	} else if n > 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "room has residents assigned"})
	}
	if n, err := h.Machines.CountByRoom(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	} else if n > 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "room has machines installed"})
	}
	if n, err := h.Alarms.CountOpenByRoom(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	} else if n > 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "room has an open alarm"})
	}
	if err := h.Rooms.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
