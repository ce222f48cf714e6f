package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/vendor-outreach/internal/repository"
	"github.com/octobees/vendor-outreach/internal/service"
)

// serviceError maps service and repository errors onto the response envelope. Unknown errors
// become a 500 carrying fallback rather than the internal message.
func serviceError(c echo.Context, err error, fallback string) error {
	var validationErr service.ValidationError
	var csvErr service.CSVValidationError

	switch {
	case errors.As(err, &validationErr):
		return Error(c, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &csvErr):
		return Error(c, http.StatusBadRequest, csvErr.Message)
	case errors.Is(err, service.ErrInvalidCredentials):
		return Error(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return Error(c, http.StatusConflict, "email already exists")
	case errors.Is(err, repository.ErrUserNotFound):
		return Error(c, http.StatusNotFound, "user not found")
	case errors.Is(err, repository.ErrWeddingNotFound):
		return Error(c, http.StatusNotFound, "wedding not found")
	case errors.Is(err, repository.ErrVendorNotFound):
		return Error(c, http.StatusNotFound, "vendor not found")
	case errors.Is(err, repository.ErrOutreachNotFound):
		return Error(c, http.StatusNotFound, "outreach not found")
	case errors.Is(err, service.ErrInvalidTransition):
		return Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNothingToSend):
		return Error(c, http.StatusConflict, err.Error())
	default:
		c.Logger().Errorf("%s: %v", fallback, err)
		return Error(c, http.StatusInternalServerError, fallback)
	}
}
