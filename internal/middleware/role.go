package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventra/event-ticketing/internal/model"
)

// RequireRole enforces that the authenticated account holds one of the
// given roles. Wrong or missing roles answer 403. It assumes JWTAuth ran
// first; ownership checks stay in the handlers, this gate only decides
// role capability.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := RoleOf(c)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
