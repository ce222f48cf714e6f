package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/service"
)

// AuthHandler exposes registration and login.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err, "unable to register user")
	}
	return Success(c, http.StatusCreated, "registration successful", resp)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err, "unable to authenticate")
	}
	return Success(c, http.StatusOK, "login successful", resp)
}
