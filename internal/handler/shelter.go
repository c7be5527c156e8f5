package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shelterops/shelter-occupancy-backend/internal/config"
	"github.com/shelterops/shelter-occupancy-backend/internal/model"
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

// ShelterHandler exposes shelter management endpoints. The gauge
// endpoints (energy, water, radiation) operate on the default shelter
// from configuration so monitoring hardware does not need to know ids.
type ShelterHandler struct {
	Cfg      config.Config
	Shelters *repository.ShelterRepo
}

func NewShelterHandler(cfg config.Config, s *repository.ShelterRepo) *ShelterHandler {
	if s == nil {
		panic("nil repository passed to NewShelterHandler")
	}
	return &ShelterHandler{Cfg: cfg, Shelters: s}
}

type shelterReq struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	MaxPeople int    `json:"max_people"`
}

// Create handles POST /v1/shelters.
func (h *ShelterHandler) Create(c echo.Context) error {
	var body shelterReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if body.MaxPeople < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "max_people must not be negative"})
	}
	s := &model.Shelter{
		Name:      name,
		Address:   strings.TrimSpace(body.Address),
		Phone:     strings.TrimSpace(body.Phone),
		MaxPeople: body.MaxPeople,
	}
	if err := h.Shelters.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create shelter"})
	}
	return c.JSON(http.StatusCreated, s)
}

// Get handles GET /v1/shelters/:id.
func (h *ShelterHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	s, err := h.Shelters.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrShelterNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "shelter not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, s)
}

// List handles GET /v1/shelters.
func (h *ShelterHandler) List(c echo.Context) error {
	out, err := h.Shelters.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PUT /v1/shelters/:id and updates contact data plus
// capacity.
func (h *ShelterHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body shelterReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	ctx := c.Request().Context()
	if err := h.Shelters.UpdateContact(ctx, id, name, strings.TrimSpace(body.Address), strings.TrimSpace(body.Phone)); err != nil {
		if err == repository.ErrShelterNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "shelter not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	if body.MaxPeople > 0 {
		if err := h.Shelters.UpdateMaxPeople(ctx, id, body.MaxPeople); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
		}
	}
	updated, err := h.Shelters.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// GetDefault handles GET /v1/shelter and returns the configured default
// shelter with its gauges.
func (h *ShelterHandler) GetDefault(c echo.Context) error {
	s, err := h.Shelters.GetDefault(c.Request().Context(), h.Cfg.DefaultShelterID)
	if err != nil {
		if err == repository.ErrNoShelterConfigured {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no shelter configured"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, s)
}

type gaugeReq struct {
	Level *int `json:"level"`
}

// SetEnergy handles PATCH /v1/shelter/energy.
func (h *ShelterHandler) SetEnergy(c echo.Context) error {
	return h.setGauge(c, h.Shelters.SetEnergyLevel)
}

// SetWater handles PATCH /v1/shelter/water.
func (h *ShelterHandler) SetWater(c echo.Context) error {
	return h.setGauge(c, h.Shelters.SetWaterLevel)
}

// SetRadiation handles PATCH /v1/shelter/radiation.
func (h *ShelterHandler) SetRadiation(c echo.Context) error {
	return h.setGauge(c, h.Shelters.SetRadiationLevel)
}

func (h *ShelterHandler) setGauge(c echo.Context, set func(ctx context.Context, id uint64, level int) error) error {
	var body gaugeReq
	if err := c.Bind(&body); err != nil || body.Level == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "level is required"})
	}
	if *body.Level < 0 || *body.Level > 100 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "level must be between 0 and 100"})
	}
	ctx := c.Request().Context()
	if _, err := h.Shelters.GetDefault(ctx, h.Cfg.DefaultShelterID); err != nil {
		if err == repository.ErrNoShelterConfigured {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no shelter configured"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if err := set(ctx, h.Cfg.DefaultShelterID, *body.Level); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	updated, err := h.Shelters.GetByID(ctx, h.Cfg.DefaultShelterID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}
