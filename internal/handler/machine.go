package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

// MachineHandler exposes endpoints for life-support machines installed
// in rooms.
type MachineHandler struct {
	Machines *repository.MachineRepo
	Rooms    *repository.RoomRepo
}

func NewMachineHandler(machines *repository.MachineRepo, rooms *repository.RoomRepo) *MachineHandler {
	if machines == nil || rooms == nil {
		panic("nil repository passed to NewMachineHandler")
	}
	return &MachineHandler{Machines: machines, Rooms: rooms}
}

type machineCreateReq struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
	RoomID uint64 `json:"room_id"`
}

// Create handles POST /v1/machines. New machines default to active.
func (h *MachineHandler) Create(c echo.Context) error {
	adminID, err := getAdminID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body machineCreateReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if body.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "room_id is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.Rooms.GetByID(ctx, body.RoomID); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	active := true
	if body.Active != nil {
		active = *body.Active
	}
	m := &model.Machine{
		Name:      name,
		Active:    active,
		RoomID:    body.RoomID,
		CreatedBy: adminID,
	}
	if err := h.Machines.Create(ctx, m); err != nil {
		if err == repository.ErrMachineNameTaken {
			return c.JSON(http.StatusConflict, map[string]string{"error": "machine name already exists in room"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create machine"})
	}
	return c.JSON(http.StatusCreated, m)
}

// Get handles GET /v1/machines/:id.
func (h *MachineHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	m, err := h.Machines.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrMachineNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "machine not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, m)
}

// ListByRoom handles GET /v1/rooms/:id/machines.
func (h *MachineHandler) ListByRoom(c echo.Context) error {
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	out, err := h.Machines.ListByRoom(c.Request().Context(), roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

// Rename handles PATCH /v1/machines/:id/name.
func (h *MachineHandler) Rename(c echo.Context) error {
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
	if err := h.Machines.Rename(ctx, id, name); err != nil {
		if err == repository.ErrMachineNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "machine not found"})
		}
		if err == repository.ErrMachineNameTaken {
			return c.JSON(http.StatusConflict, map[string]string{"error": "machine name already exists in room"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	updated, _ := h.Machines.GetByID(ctx, id)
	return c.JSON(http.StatusOK, updated)
}

// SetActive handles PATCH /v1/machines/:id/active and toggles the
// machine on or off.
func (h *MachineHandler) SetActive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil || body.Active == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "active is required"})
	}
	ctx := c.Request().Context()
	if err := h.Machines.SetActive(ctx, id, *body.Active); err != nil {
		if err == repository.ErrMachineNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "machine not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	updated, _ := h.Machines.GetByID(ctx, id)
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/machines/:id.
func (h *MachineHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Machines.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrMachineNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "machine not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
