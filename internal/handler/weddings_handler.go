package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/vendor-outreach/internal/dto"
	middlewarepkg "github.com/octobees/vendor-outreach/internal/middleware"
	"github.com/octobees/vendor-outreach/internal/service"
)

// WeddingsHandler exposes per-user wedding CRUD.
type WeddingsHandler struct {
	weddings *service.WeddingsService
}

// NewWeddingsHandler constructs a handler instance.
func NewWeddingsHandler(weddings *service.WeddingsService) *WeddingsHandler {
	return &WeddingsHandler{weddings: weddings}
}

// Create handles POST /weddings.
func (h *WeddingsHandler) Create(c echo.Context) error {
	var req dto.CreateWeddingRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	wedding, err := h.weddings.CreateWedding(c.Request().Context(), middlewarepkg.UserIDFromContext(c), req)
	if err != nil {
		return serviceError(c, err, "failed to create wedding")
	}
	return Success(c, http.StatusCreated, "wedding created", wedding)
}

// List handles GET /weddings.
func (h *WeddingsHandler) List(c echo.Context) error {
	weddings, err := h.weddings.ListWeddings(c.Request().Context(), middlewarepkg.UserIDFromContext(c))
	if err != nil {
		return serviceError(c, err, "failed to list weddings")
	}
	return Success(c, http.StatusOK, "weddings retrieved", weddings)
}

// Get handles GET /weddings/:id.
func (h *WeddingsHandler) Get(c echo.Context) error {
	wedding, err := h.weddings.GetWedding(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		return serviceError(c, err, "failed to load wedding")
	}
	return Success(c, http.StatusOK, "wedding retrieved", wedding)
}

// Update handles PATCH /weddings/:id.
func (h *WeddingsHandler) Update(c echo.Context) error {
	var req dto.UpdateWeddingRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	wedding, err := h.weddings.UpdateWedding(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"), req)
	if err != nil {
		return serviceError(c, err, "failed to update wedding")
	}
	return Success(c, http.StatusOK, "wedding updated", wedding)
}

// Delete handles DELETE /weddings/:id.
func (h *WeddingsHandler) Delete(c echo.Context) error {
	if err := h.weddings.DeleteWedding(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id")); err != nil {
		return serviceError(c, err, "failed to delete wedding")
	}
	return Success(c, http.StatusOK, "wedding deleted", nil)
}
