package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
	"github.com/octobees/vendor-outreach/internal/repository"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
	listSeparator  = "|"
)

// VendorsService exposes read and import operations for the vendor catalogue.
type VendorsService struct {
	repo     repository.VendorsRepository
	contacts *ContactNormalizer
}

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// NewVendorsService creates a new instance of VendorsService.
func NewVendorsService(repo repository.VendorsRepository, contacts *ContactNormalizer) *VendorsService {
	if contacts == nil {
		contacts = NewContactNormalizer(defaultPhoneRegion)
	}
	return &VendorsService{repo: repo, contacts: contacts}
}

// ListVendors returns vendors respecting pagination defaults.
func (s *VendorsService) ListVendors(ctx context.Context, filter dto.VendorFilter) ([]entity.Vendor, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}
	if filter.Category != "" {
		category := entity.Category(strings.ToUpper(strings.TrimSpace(filter.Category)))
		if !category.Valid() {
			return nil, invalid("category", "unknown category")
		}
		filter.Category = string(category)
	}
	if filter.MinRating != nil && (*filter.MinRating < 0 || *filter.MinRating > 5) {
		return nil, invalid("min_rating", "min_rating must be between 0 and 5")
	}
	return s.repo.List(ctx, filter)
}

// GetVendor returns one vendor by id.
func (s *VendorsService) GetVendor(ctx context.Context, id string) (*entity.Vendor, error) {
	vendorID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, invalid("id", "invalid vendor id")
	}
	return s.repo.GetByID(ctx, vendorID)
}

// ImportVendorsCSV ingests vendors from a CSV reader, upserting on (name, location).
func (s *VendorsService) ImportVendorsCSV(ctx context.Context, r io.Reader) (dto.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dto.ImportSummary{}, CSVValidationError{Message: "csv file is empty"}
		}
		return dto.ImportSummary{}, CSVValidationError{Message: fmt.Sprintf("read csv header: %v", err)}
	}

	index, valErr := buildHeaderIndex(header)
	if valErr != nil {
		return dto.ImportSummary{}, valErr
	}

	var (
		records []repository.BulkUpsertVendorInput
		rowNum  = 1
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			return dto.ImportSummary{}, CSVValidationError{Message: fmt.Sprintf("malformed csv on row %d", rowNum)}
		}

		record, skip, rowErr := s.parseRow(csvRow{values: row, index: index}, rowNum)
		if rowErr != nil {
			return dto.ImportSummary{}, rowErr
		}
		if skip {
			continue
		}
		records = append(records, record)
	}

	result, err := s.repo.BulkUpsert(ctx, records)
	if err != nil {
		return dto.ImportSummary{}, err
	}

	return dto.ImportSummary{
		Inserted: result.Inserted,
		Updated:  result.Updated,
		Total:    result.Total,
	}, nil
}

func (s *VendorsService) parseRow(row csvRow, rowNum int) (repository.BulkUpsertVendorInput, bool, error) {
	name := row.get("name")
	location := row.get("location")
	if name == "" || location == "" {
		return repository.BulkUpsertVendorInput{}, true, nil
	}

	rowError := func(column string) error {
		return CSVValidationError{Message: fmt.Sprintf("invalid %s value on row %d", column, rowNum)}
	}

	maxGuests, err := parseOptionalInt(row.get("max_guests"))
	if err != nil || (maxGuests != nil && *maxGuests <= 0) {
		return repository.BulkUpsertVendorInput{}, false, rowError("max_guests")
	}
	priceMin, err := parseOptionalInt64(row.get("price_min"))
	if err != nil || (priceMin != nil && *priceMin < 0) {
		return repository.BulkUpsertVendorInput{}, false, rowError("price_min")
	}
	priceMax, err := parseOptionalInt64(row.get("price_max"))
	if err != nil || (priceMax != nil && *priceMax < 0) {
		return repository.BulkUpsertVendorInput{}, false, rowError("price_max")
	}
	if priceMin != nil && priceMax != nil && *priceMin > *priceMax {
		return repository.BulkUpsertVendorInput{}, false, rowError("price range")
	}
	rating, err := parseOptionalFloat(row.get("rating"))
	if err != nil || (rating != nil && (*rating < 0 || *rating > 5)) {
		return repository.BulkUpsertVendorInput{}, false, rowError("rating")
	}

	var email *string
	if cleaned, ok := s.contacts.CleanEmail(row.get("email")); ok {
		email = &cleaned
	}

	return repository.BulkUpsertVendorInput{
		Name:            name,
		Category:        entity.ParseCategory(row.get("category")),
		Location:        location,
		Region:          normalizeString(row.get("region")),
		Suburb:          normalizeString(row.get("suburb")),
		MaxGuests:       maxGuests,
		PriceMin:        priceMin,
		PriceMax:        priceMax,
		Styles:          splitList(row.get("styles")),
		Description:     row.get("description"),
		ServicesOffered: splitList(row.get("services")),
		Rating:          rating,
		Email:           email,
		Phone:           normalizeString(s.contacts.NormalizePhone(row.get("phone"))),
		Website:         normalizeString(s.contacts.NormalizeWebsite(row.get("website"))),
	}, false, nil
}

var requiredCSVHeaders = []string{"name", "category", "location"}

type csvRow struct {
	values []string
	index  map[string]int
}

// get returns the trimmed value of column, or "" when the column is absent.
func (r csvRow) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

// splitList splits a |-separated cell, dropping blanks and case-insensitive duplicates.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, listSeparator)
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := strings.ToLower(part)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseOptionalFloat(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseOptionalInt(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func parseOptionalInt64(value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func normalizeString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
