package router

import (
	"github.com/labstack/echo/v4"

	"github.com/shelterops/shelter-occupancy-backend/internal/handler"
	"github.com/shelterops/shelter-occupancy-backend/internal/middleware"
)

// AdminHandlers bundles the handlers mounted under the ADMIN-scoped
// group so RegisterAdmin does not take nine parameters.
type AdminHandlers struct {
	Shelters  *handler.ShelterHandler
	Rooms     *handler.RoomHandler
	Families  *handler.FamilyHandler
	Residents *handler.ResidentHandler
	Machines  *handler.MachineHandler
	Alarms    *handler.AlarmHandler
}

// RegisterAdmin registers ADMIN-scoped endpoints under /v1. All routes
// require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.AdminRole),
	}
	mws = append(mws, extra...)
	g := e.Group("/v1", mws...)

	// ---- Shelters ----
	g.POST("/shelters", h.Shelters.Create)
	g.GET("/shelters", h.Shelters.List)
	g.GET("/shelters/:id", h.Shelters.Get)
	g.PUT("/shelters/:id", h.Shelters.Update)
	g.GET("/shelters/:id/rooms", h.Rooms.ListByShelter)
	g.GET("/shelters/:id/families", h.Families.ListByShelter)

	// Default shelter gauges for monitoring hardware that knows no ids.
	g.GET("/shelter", h.Shelters.GetDefault)
	g.PATCH("/shelter/energy", h.Shelters.SetEnergy)
	g.PATCH("/shelter/water", h.Shelters.SetWater)
	g.PATCH("/shelter/radiation", h.Shelters.SetRadiation)

	// ---- Rooms ----
	g.POST("/rooms", h.Rooms.Create)
	g.GET("/rooms/:id", h.Rooms.Get)
	g.PATCH("/rooms/:id/name", h.Rooms.Rename)
	g.PATCH("/rooms/:id/capacity", h.Rooms.UpdateCapacity)
	g.DELETE("/rooms/:id", h.Rooms.Delete)
	g.GET("/rooms/:id/residents", h.Residents.ListByRoom)
	g.GET("/rooms/:id/machines", h.Machines.ListByRoom)
	g.GET("/rooms/:id/alarms", h.Alarms.ListByRoom)

	// ---- Families ----
	g.POST("/families", h.Families.Create)
	g.GET("/families/:id", h.Families.Get)
	g.PATCH("/families/:id/room", h.Families.AssignRoom)
	g.DELETE("/families/:id", h.Families.Delete)
	g.GET("/families/:id/residents", h.Residents.ListByFamily)

	// ---- Residents ----
	g.POST("/residents", h.Residents.Create)
	g.GET("/residents/:id", h.Residents.Get)
	g.PATCH("/residents/:id", h.Residents.Update)
	g.DELETE("/residents/:id/family", h.Residents.DetachFamily)
	g.DELETE("/residents/:id", h.Residents.Delete)

	// ---- Machines ----
	g.POST("/machines", h.Machines.Create)
	g.GET("/machines/:id", h.Machines.Get)
	g.PATCH("/machines/:id/name", h.Machines.Rename)
	g.PATCH("/machines/:id/active", h.Machines.SetActive)
	g.DELETE("/machines/:id", h.Machines.Delete)

	// ---- Alarms ----
	g.POST("/alarms", h.Alarms.Raise)
	g.GET("/alarms/open", h.Alarms.ListOpen)
	g.GET("/alarms/:id", h.Alarms.Get)
	g.POST("/alarms/:id/end", h.Alarms.End)
}
