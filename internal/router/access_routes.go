package router

import (
	"github.com/labstack/echo/v4"

	"github.com/shelterops/shelter-occupancy-backend/internal/handler"
	"github.com/shelterops/shelter-occupancy-backend/internal/middleware"
)

// RegisterAccess registers the door access evaluation endpoint. Door
// controllers authenticate with the same JWT scheme as admins; the
// endpoint is mounted separately so it can carry its own middleware
// (e.g. a tighter rate limit) without touching the admin group.
func RegisterAccess(e *echo.Echo, a *handler.AccessHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.AdminRole),
	}
	mws = append(mws, extra...)
	g := e.Group("/v1/access", mws...)
	g.POST("", a.Evaluate)
}
