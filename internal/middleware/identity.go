package middleware

// identity.go holds small helpers shared across middleware files. The
// rate limiter and cache key builders need a stable caller identity,
// derived from the claims JWTAuth stored in the context. Unauthenticated
// requests fall back to "guest".

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// callerID extracts the admin identifier stored by JWTAuth. It returns
// "guest" when no admin is authenticated.
func callerID(c echo.Context) string {
	v := c.Get("admin_id")
	if v == nil {
		return "guest"
	}
	switch id := v.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return fmt.Sprintf("%.0f", id)
	}
	return "guest"
}
