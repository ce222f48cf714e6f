package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/vendor-outreach/internal/auth"
)

// JWT requires a bearer token and copies its claims into the request context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scheme, token, ok := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
			switch {
			case scheme == "":
				return abort(c, http.StatusUnauthorized, "missing authorization header")
			case !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "":
				return abort(c, http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := manager.ParseToken(strings.TrimSpace(token))
			if err != nil {
				return abort(c, http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(ContextKeyUserID, claims.Subject)
			c.Set(ContextKeyUserEmail, claims.Email)
			c.Set(ContextKeyUserName, claims.Name)
			c.Set(ContextKeyUserRole, claims.Role)

			return next(c)
		}
	}
}
