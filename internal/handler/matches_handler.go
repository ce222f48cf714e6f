package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/vendor-outreach/internal/dto"
	middlewarepkg "github.com/octobees/vendor-outreach/internal/middleware"
	"github.com/octobees/vendor-outreach/internal/service"
)

// MatchesHandler exposes vendor matching.
type MatchesHandler struct {
	matches *service.MatchService
}

// NewMatchesHandler constructs a handler instance.
func NewMatchesHandler(matches *service.MatchService) *MatchesHandler {
	return &MatchesHandler{matches: matches}
}

// Match handles POST /matches with an ad-hoc requirement set.
func (h *MatchesHandler) Match(c echo.Context) error {
	var req dto.MatchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.matches.Match(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err, "failed to match vendors")
	}
	return Success(c, http.StatusOK, "vendors matched", resp)
}

// MatchWedding handles GET /weddings/:id/matches.
func (h *MatchesHandler) MatchWedding(c echo.Context) error {
	resp, err := h.matches.MatchWedding(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		return serviceError(c, err, "failed to match vendors")
	}
	return Success(c, http.StatusOK, "vendors matched", resp)
}
