package middleware

import (
	"github.com/labstack/echo/v4"
)

// Context keys used to store authentication metadata.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserName  = "user_name"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

// UserIDFromContext returns the authenticated user id, or "" for anonymous requests.
func UserIDFromContext(c echo.Context) string {
	return contextString(c, ContextKeyUserID)
}

// UserRoleFromContext returns the role from the access token, or "".
func UserRoleFromContext(c echo.Context) string {
	return contextString(c, ContextKeyUserRole)
}

func contextString(c echo.Context, key string) string {
	if val, ok := c.Get(key).(string); ok {
		return val
	}
	return ""
}

// errorBody matches the handler package envelope so middleware rejections look like handler errors.
type errorBody struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func abort(c echo.Context, status int, message string) error {
	return c.JSON(status, errorBody{Status: "error", Message: message, RequestID: RequestIDFromContext(c)})
}
