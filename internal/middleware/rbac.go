package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RequireRole admits requests whose token carries one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := UserRoleFromContext(c)
			if role == "" {
				return abort(c, http.StatusForbidden, "missing role")
			}
			if !slices.Contains(roles, role) {
				return abort(c, http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
