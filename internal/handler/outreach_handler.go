package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/vendor-outreach/internal/dto"
	middlewarepkg "github.com/octobees/vendor-outreach/internal/middleware"
	"github.com/octobees/vendor-outreach/internal/service"
)

// OutreachHandler exposes outreach drafting, delivery and tracking.
type OutreachHandler struct {
	outreach *service.OutreachService
}

// NewOutreachHandler constructs a handler instance.
func NewOutreachHandler(outreach *service.OutreachService) *OutreachHandler {
	return &OutreachHandler{outreach: outreach}
}

// Generate handles POST /weddings/:id/outreach.
func (h *OutreachHandler) Generate(c echo.Context) error {
	var req dto.GenerateOutreachRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.outreach.Generate(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"), req)
	if err != nil {
		return serviceError(c, err, "failed to generate outreach")
	}
	return Success(c, http.StatusCreated, "outreach drafts generated", resp)
}

// Send handles POST /weddings/:id/outreach/send.
func (h *OutreachHandler) Send(c echo.Context) error {
	var req dto.SendOutreachRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.outreach.Send(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"), req)
	if err != nil {
		return serviceError(c, err, "failed to send outreach")
	}
	return Success(c, http.StatusOK, "outreach delivery completed", resp)
}

// List handles GET /weddings/:id/outreach.
func (h *OutreachHandler) List(c echo.Context) error {
	items, err := h.outreach.ListOutreach(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		return serviceError(c, err, "failed to list outreach")
	}
	return Success(c, http.StatusOK, "outreach retrieved", items)
}

// Update handles PATCH /outreach/:id.
func (h *OutreachHandler) Update(c echo.Context) error {
	var req dto.UpdateOutreachRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	item, err := h.outreach.UpdateOutreach(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"), req)
	if err != nil {
		return serviceError(c, err, "failed to update outreach")
	}
	return Success(c, http.StatusOK, "outreach updated", item)
}

// Dashboard handles GET /weddings/:id/dashboard.
func (h *OutreachHandler) Dashboard(c echo.Context) error {
	dashboard, err := h.outreach.Dashboard(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		return serviceError(c, err, "failed to build dashboard")
	}
	return Success(c, http.StatusOK, "dashboard retrieved", dashboard)
}
