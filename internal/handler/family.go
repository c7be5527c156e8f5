package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shelterops/shelter-occupancy-backend/internal/model"
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

// FamilyHandler exposes family management endpoints. Deletion runs in a
// transaction so the resident check and the delete see the same state.
type FamilyHandler struct {
	DB        *sql.DB
	Families  *repository.FamilyRepo
	Residents *repository.ResidentRepo
	Rooms     *repository.RoomRepo
	Shelters  *repository.ShelterRepo
}

func NewFamilyHandler(db *sql.DB, families *repository.FamilyRepo, residents *repository.ResidentRepo, rooms *repository.RoomRepo, shelters *repository.ShelterRepo) *FamilyHandler {
	if db == nil || families == nil || residents == nil || rooms == nil || shelters == nil {
		panic("nil dependency passed to NewFamilyHandler")
	}
	return &FamilyHandler{DB: db, Families: families, Residents: residents, Rooms: rooms, Shelters: shelters}
}

type familyCreateReq struct {
	FamilyName string  `json:"family_name"`
	RoomID     *uint64 `json:"room_id"`
	ShelterID  uint64  `json:"shelter_id"`
}

// Create handles POST /v1/families. A family may start without a room;
// residents cannot be placed until one is assigned.
func (h *FamilyHandler) Create(c echo.Context) error {
	adminID, err := getAdminID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body familyCreateReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.FamilyName)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "family_name is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.Shelters.GetByID(ctx, body.ShelterID); err != nil {
		if err == repository.ErrShelterNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "shelter not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if body.RoomID != nil {
		if _, err := h.Rooms.GetByID(ctx, *body.RoomID); err != nil {
			if err == repository.ErrRoomNotFound {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
	}
	fam := &model.Family{
		FamilyName: name,
		RoomID:     body.RoomID,
		ShelterID:  body.ShelterID,
		CreatedBy:  adminID,
	}
	if err := h.Families.Create(ctx, fam); err != nil {
		if err == repository.ErrFamilyNameTaken {
			return c.JSON(http.StatusConflict, map[string]string{"error": "family name already taken for this room"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create family"})
	}
	return c.JSON(http.StatusCreated, fam)
}

// Get handles GET /v1/families/:id and includes the member count.
func (h *FamilyHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	fam, err := h.Families.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrFamilyNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "family not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	members, err := h.Residents.CountByFamily(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"family":  fam,
		"members": members,
	})
}

// ListByShelter handles GET /v1/shelters/:id/families.
func (h *FamilyHandler) ListByShelter(c echo.Context) error {
	shelterID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	out, err := h.Families.ListByShelter(c.Request().Context(), shelterID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

// AssignRoom handles PATCH /v1/families/:id/room and moves the family
// to another room.
func (h *FamilyHandler) AssignRoom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		RoomID uint64 `json:"room_id"`
	}
	if err := c.Bind(&body); err != nil || body.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "room_id is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.Rooms.GetByID(ctx, body.RoomID); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if err := h.Families.AssignRoom(ctx, id, body.RoomID); err != nil {
		if err == repository.ErrFamilyNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "family not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	updated, _ := h.Families.GetByID(ctx, id)
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/families/:id. A family with residents still
// registered cannot be removed; callers must move or delete the
// residents first.
func (h *FamilyHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.Families.GetForUpdateTx(ctx, tx, id); err != nil {
		if err == repository.ErrFamilyNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "family not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	members, err := h.Residents.CountByFamilyTx(ctx, tx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if members > 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "family still has residents"})
	}
	if err := h.Families.DeleteTx(ctx, tx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}
