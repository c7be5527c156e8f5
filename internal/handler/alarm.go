package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shelterops/shelter-occupancy-backend/internal/config"
	"github.com/shelterops/shelter-occupancy-backend/internal/model"
	"github.com/shelterops/shelter-occupancy-backend/internal/queue"
	"github.com/shelterops/shelter-occupancy-backend/internal/repository"
	queue_publisher "github.com/shelterops/shelter-occupancy-backend/internal/service"
)

// AlarmHandler exposes alarm endpoints. Raising an alarm publishes an
// alarm.raised event to the broker in the background; a broker outage
// never fails the request.
type AlarmHandler struct {
	Cfg      config.Config
	Alarms   *repository.AlarmRepo
	Rooms    *repository.RoomRepo
	Shelters *repository.ShelterRepo
}

func NewAlarmHandler(cfg config.Config, alarms *repository.AlarmRepo, rooms *repository.RoomRepo, shelters *repository.ShelterRepo) *AlarmHandler {
	if alarms == nil || rooms == nil || shelters == nil {
		panic("nil repository passed to NewAlarmHandler")
	}
	return &AlarmHandler{Cfg: cfg, Alarms: alarms, Rooms: rooms, Shelters: shelters}
}

type alarmCreateReq struct {
	ID     *uint64 `json:"id"`
	RoomID *uint64 `json:"room_id"`
}

// Raise handles POST /v1/alarms. Hardware panic buttons send a fixed
// alarm id and no room; those fall back to the configured alarm room.
// Re-sending an id that already exists yields 409 so button retries are
// detectable.
func (h *AlarmHandler) Raise(c echo.Context) error {
	var body alarmCreateReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	roomID := h.Cfg.AlarmRoomID
	if body.RoomID != nil && *body.RoomID != 0 {
		roomID = *body.RoomID
	}
	ctx := c.Request().Context()
	room, err := h.Rooms.GetByID(ctx, roomID)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}

	a := &model.Alarm{RoomID: roomID, StartedAt: time.Now().UTC()}
	if body.ID != nil && *body.ID != 0 {
		a.ID = *body.ID
		err = h.Alarms.CreateWithID(ctx, a)
	} else {
		err = h.Alarms.Create(ctx, a)
	}
	if err != nil {
		if err == repository.ErrAlarmExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": "alarm already raised"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not raise alarm"})
	}

	// Fire-and-forget notification. Shelter lookup failures only make
	// the event less descriptive.
	ev := queue.AlarmRaisedEvent{
		AlarmID:   a.ID,
		RoomID:    room.ID,
		RoomName:  room.Name,
		ShelterID: room.ShelterID,
		StartedAt: a.StartedAt.Format(time.RFC3339),
	}
	if s, err := h.Shelters.GetByID(ctx, room.ShelterID); err == nil {
		ev.ShelterName = s.Name
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishAlarmRaised(pubCtx, ev)
	}()

	return c.JSON(http.StatusCreated, a)
}

// Get handles GET /v1/alarms/:id.
func (h *AlarmHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	a, err := h.Alarms.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrAlarmNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "alarm not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, a)
}

// End handles POST /v1/alarms/:id/end and closes an open alarm.
func (h *AlarmHandler) End(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if err := h.Alarms.End(ctx, id); err != nil {
		switch err {
		case repository.ErrAlarmNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": "alarm not found"})
		case repository.ErrAlarmEnded:
			return c.JSON(http.StatusConflict, map[string]string{"error": "alarm already ended"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	updated, _ := h.Alarms.GetByID(ctx, id)
	return c.JSON(http.StatusOK, updated)
}

// ListOpen handles GET /v1/alarms/open.
func (h *AlarmHandler) ListOpen(c echo.Context) error {
	out, err := h.Alarms.ListOpen(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

// ListByRoom handles GET /v1/rooms/:id/alarms.
func (h *AlarmHandler) ListByRoom(c echo.Context) error {
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	out, err := h.Alarms.ListByRoom(c.Request().Context(), roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, out)
}
