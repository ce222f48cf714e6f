package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/service"
)

// VendorsHandler exposes the vendor catalogue and its CSV import.
type VendorsHandler struct {
	service *service.VendorsService
}

// NewVendorsHandler creates a new handler instance.
func NewVendorsHandler(service *service.VendorsService) *VendorsHandler {
	return &VendorsHandler{service: service}
}

// List handles GET /vendors requests.
func (h *VendorsHandler) List(c echo.Context) error {
	filter := dto.VendorFilter{
		Q:        strings.TrimSpace(c.QueryParam("q")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Location: strings.TrimSpace(c.QueryParam("location")),
		Page:     parseIntDefault(c.QueryParam("page"), 1),
		PerPage:  parseIntDefault(c.QueryParam("per_page"), 20),
	}

	if minRatingStr := strings.TrimSpace(c.QueryParam("min_rating")); minRatingStr != "" {
		minRating, err := strconv.ParseFloat(minRatingStr, 64)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid min_rating")
		}
		filter.MinRating = &minRating
	}

	vendors, err := h.service.ListVendors(c.Request().Context(), filter)
	if err != nil {
		return serviceError(c, err, "failed to list vendors")
	}

	return Success(c, http.StatusOK, "vendors retrieved", vendors)
}

// Get handles GET /vendors/:id requests.
func (h *VendorsHandler) Get(c echo.Context) error {
	vendor, err := h.service.GetVendor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err, "failed to load vendor")
	}
	return Success(c, http.StatusOK, "vendor retrieved", vendor)
}

// Import handles POST /admin/vendors/import requests.
func (h *VendorsHandler) Import(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.service.ImportVendorsCSV(c.Request().Context(), file)
	if err != nil {
		return serviceError(c, err, "failed to process csv")
	}

	return Success(c, http.StatusOK, "vendors CSV processed", summary)
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
