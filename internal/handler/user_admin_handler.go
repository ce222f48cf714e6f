package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/vendor-outreach/internal/dto"
	middlewarepkg "github.com/octobees/vendor-outreach/internal/middleware"
	"github.com/octobees/vendor-outreach/internal/service"
)

// UserAdminHandler exposes account management under /admin/users.
type UserAdminHandler struct {
	users *service.UserService
}

func NewUserAdminHandler(users *service.UserService) *UserAdminHandler {
	return &UserAdminHandler{users: users}
}

func (h *UserAdminHandler) List(c echo.Context) error {
	records, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return serviceError(c, err, "failed to list users")
	}
	return Success(c, http.StatusOK, "users retrieved", records)
}

func (h *UserAdminHandler) Create(c echo.Context) error {
	var req dto.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.CreateUser(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err, "failed to create user")
	}
	return Success(c, http.StatusCreated, "user created", user)
}

func (h *UserAdminHandler) Update(c echo.Context) error {
	var req dto.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateUser(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return serviceError(c, err, "failed to update user")
	}
	return Success(c, http.StatusOK, "user updated", user)
}

// Delete removes the account in :id. Admins cannot remove themselves.
func (h *UserAdminHandler) Delete(c echo.Context) error {
	if err := h.users.DeleteUser(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id")); err != nil {
		return serviceError(c, err, "failed to delete user")
	}
	return Success(c, http.StatusOK, "user deleted", nil)
}
