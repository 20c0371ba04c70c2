// Package middleware provides the shared request processing applied by the
// router: authentication, role authorization, rate limiting, response
// caching and structured request logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eventra/event-ticketing/internal/model"
)

// Context keys populated by JWTAuth.
const (
	CtxAccountID = "account_id"
	CtxRole      = "role"
)

// JWTAuth validates a Bearer access token and injects the account ID and
// role into the request context. Missing, malformed and expired tokens all
// answer 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			sub, _ := claims["sub"].(string)
			accountID, err := uuid.Parse(sub)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}
			roleStr, _ := claims["role"].(string)
			role := model.Role(roleStr)
			if !role.Valid() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid role claim"})
			}

			c.Set(CtxAccountID, accountID)
			c.Set(CtxRole, role)
			return next(c)
		}
	}
}

// AccountID extracts the authenticated account ID stored by JWTAuth.
func AccountID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(CtxAccountID).(uuid.UUID)
	return id, ok
}

// RoleOf extracts the authenticated role stored by JWTAuth.
func RoleOf(c echo.Context) (model.Role, bool) {
	role, ok := c.Get(CtxRole).(model.Role)
	return role, ok
}
