package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shelterops/shelter-occupancy-backend/internal/placement"
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

// ResidentHandler exposes resident endpoints. Creation goes through the
// placement engine; everything else is plain CRUD.
type ResidentHandler struct {
	Engine    *placement.Engine
	Residents *repository.ResidentRepo
	Families  *repository.FamilyRepo
}

func NewResidentHandler(engine *placement.Engine, residents *repository.ResidentRepo, families *repository.FamilyRepo) *ResidentHandler {
	if engine == nil || residents == nil || families == nil {
		panic("nil dependency passed to NewResidentHandler")
	}
	return &ResidentHandler{Engine: engine, Residents: residents, Families: families}
}

type residentCreateReq struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
	Gender    string `json:"gender"`
	FamilyID  uint64 `json:"family_id"`
}

// Create handles POST /v1/residents. The placement engine decides which
// room the resident lands in and may move the whole family to a larger
// room in the process.
func (h *ResidentHandler) Create(c echo.Context) error {
	adminID, err := getAdminID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body residentCreateReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	surname := strings.TrimSpace(body.Surname)
	if name == "" || surname == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and surname are required"})
	}
	if body.FamilyID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "family_id is required"})
	}
	birth, err := time.Parse("2006-01-02", strings.TrimSpace(body.BirthDate))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "birth_date must be YYYY-MM-DD"})
	}

	res, err := h.Engine.PlaceResident(c.Request().Context(), placement.NewResident{
		Name:      name,
		Surname:   surname,
		BirthDate: birth,
		Gender:    strings.TrimSpace(body.Gender),
		FamilyID:  body.FamilyID,
		CreatedBy: adminID,
	})
	if err != nil {
		switch err {
		case repository.ErrFamilyNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": "family not found"})
		case placement.ErrFamilyHasNoRoom:
			return c.JSON(http.StatusConflict, map[string]string{"error": "family has no room assigned"})
		case repository.ErrDuplicateResident:
			return c.JSON(http.StatusConflict, map[string]string{"error": "resident already registered in this family"})
		case placement.ErrShelterFull:
			return c.JSON(http.StatusConflict, map[string]string{"error": "shelter is full"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not place resident"})
	}
	return c.JSON(http.StatusCreated, res)
}

// Get handles GET /v1/residents/:id.
func (h *ResidentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	res, err := h.Residents.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrResidentNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "resident not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, res)
}

// ListByFamily handles GET /v1/families/:id/residents.
func (h *ResidentHandler) ListByFamily(c echo.Context) error {
	familyID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	out, err := h.Residents.ListByFamily(c.Request().Context(), familyID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

// ListByRoom handles GET /v1/rooms/:id/residents.
func (h *ResidentHandler) ListByRoom(c echo.Context) error {
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	out, err := h.Residents.ListByRoom(c.Request().Context(), roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PATCH /v1/residents/:id and changes name/surname.
func (h *ResidentHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		Name    string `json:"name"`
		Surname string `json:"surname"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	surname := strings.TrimSpace(body.Surname)
	if name == "" || surname == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and surname are required"})
	}
	ctx := c.Request().Context()
	if err := h.Residents.UpdateNames(ctx, id, name, surname); err != nil {
		if err == repository.ErrResidentNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "resident not found"})
		}
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "resident already registered in this family"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	updated, _ := h.Residents.GetByID(ctx, id)
	return c.JSON(http.StatusOK, updated)
}

// DetachFamily handles DELETE /v1/residents/:id/family and removes the
// resident from their family without deleting the person.
func (h *ResidentHandler) DetachFamily(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Residents.DetachFamily(c.Request().Context(), id); err != nil {
		if err == repository.ErrResidentNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "resident not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/residents/:id.
func (h *ResidentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Residents.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrResidentNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "resident not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
