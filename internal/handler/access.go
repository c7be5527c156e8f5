package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shelterops/shelter-occupancy-backend/internal/access"
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
)

// AccessHandler answers door controller queries: may this resident
// enter that room right now.
type AccessHandler struct {
	Eval *access.Evaluator
}

func NewAccessHandler(eval *access.Evaluator) *AccessHandler {
	if eval == nil {
		panic("nil evaluator passed to NewAccessHandler")
	}
	return &AccessHandler{Eval: eval}
}

type accessReq struct {
	ResidentID uint64 `json:"resident_id"`
	RoomID     uint64 `json:"room_id"`
}

// Evaluate handles POST /v1/access. The decision itself is always a 200
// with granted true or false; 404 means the resident or room does not
// exist at all.
func (h *AccessHandler) Evaluate(c echo.Context) error {
	var body accessReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.ResidentID == 0 || body.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "resident_id and room_id are required"})
	}
	d, err := h.Eval.EvaluateAccess(c.Request().Context(), body.ResidentID, body.RoomID)
	if err != nil {
		switch err {
		case repository.ErrResidentNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": "resident not found"})
		case repository.ErrRoomNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, d)
}
