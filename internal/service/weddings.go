package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
	"github.com/octobees/vendor-outreach/internal/repository"
)

const weddingDateLayout = "2006-01-02"

// WeddingsService manages the weddings owned by a planner.
type WeddingsService struct {
	repo repository.WeddingsRepository
}

// NewWeddingsService builds a new WeddingsService.
func NewWeddingsService(repo repository.WeddingsRepository) *WeddingsService {
	return &WeddingsService{repo: repo}
}

// CreateWedding validates req and stores a wedding for userID.
func (s *WeddingsService) CreateWedding(ctx context.Context, userID string, req dto.CreateWeddingRequest) (*entity.Wedding, error) {
	owner, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	wedding := &entity.Wedding{
		UserID:      owner,
		Title:       strings.TrimSpace(req.Title),
		Location:    strings.TrimSpace(req.Location),
		GuestCount:  req.GuestCount,
		BudgetTotal: req.BudgetTotal,
		Style:       trimPointer(req.Style),
		Preferences: cleanPreferences(req.Preferences),
	}
	if req.WeddingDate != nil {
		if wedding.WeddingDate, err = parseWeddingDate(*req.WeddingDate); err != nil {
			return nil, err
		}
	}
	if wedding.Title == "" {
		wedding.Title = "Wedding in " + wedding.Location
	}
	if err := validateWedding(wedding); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, wedding)
}

// ListWeddings returns every wedding owned by userID.
func (s *WeddingsService) ListWeddings(ctx context.Context, userID string) ([]entity.Wedding, error) {
	owner, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	weddings, err := s.repo.ListByUser(ctx, owner)
	if err != nil {
		return nil, err
	}
	if weddings == nil {
		weddings = []entity.Wedding{}
	}
	return weddings, nil
}

// GetWedding returns the wedding if it belongs to userID, or repository.ErrWeddingNotFound.
func (s *WeddingsService) GetWedding(ctx context.Context, userID, id string) (*entity.Wedding, error) {
	owner, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	weddingID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, invalid("id", "invalid wedding id")
	}
	return s.repo.GetForUser(ctx, weddingID, owner)
}

// UpdateWedding applies the non-nil fields of req. Empty strings clear the optional date and style.
func (s *WeddingsService) UpdateWedding(ctx context.Context, userID, id string, req dto.UpdateWeddingRequest) (*entity.Wedding, error) {
	wedding, err := s.GetWedding(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title", "title cannot be empty")
		}
		wedding.Title = title
	}
	if req.WeddingDate != nil {
		if wedding.WeddingDate, err = parseWeddingDate(*req.WeddingDate); err != nil {
			return nil, err
		}
	}
	if req.Location != nil {
		wedding.Location = strings.TrimSpace(*req.Location)
	}
	if req.GuestCount != nil {
		wedding.GuestCount = req.GuestCount
	}
	if req.BudgetTotal != nil {
		wedding.BudgetTotal = req.BudgetTotal
	}
	if req.Style != nil {
		wedding.Style = trimPointer(req.Style)
	}
	if req.Preferences != nil {
		wedding.Preferences = cleanPreferences(*req.Preferences)
	}
	if err := validateWedding(wedding); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, wedding)
}

// DeleteWedding removes a wedding owned by userID.
func (s *WeddingsService) DeleteWedding(ctx context.Context, userID, id string) error {
	owner, err := parseUserID(userID)
	if err != nil {
		return err
	}
	weddingID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return invalid("id", "invalid wedding id")
	}
	return s.repo.Delete(ctx, weddingID, owner)
}

func validateWedding(w *entity.Wedding) error {
	if w.Location == "" {
		return ErrLocationRequired
	}
	if w.GuestCount != nil && *w.GuestCount <= 0 {
		return invalid("guest_count", "guest_count must be positive")
	}
	if w.BudgetTotal != nil && *w.BudgetTotal <= 0 {
		return invalid("budget_total", "budget_total must be positive")
	}
	return nil
}

// parseWeddingDate parses YYYY-MM-DD. A blank value clears the date.
func parseWeddingDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(weddingDateLayout, raw)
	if err != nil {
		return nil, invalid("wedding_date", "wedding_date must use YYYY-MM-DD")
	}
	return &date, nil
}

func parseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalid("user_id", "invalid user id")
	}
	return id, nil
}

func trimPointer(value *string) *string {
	if value == nil {
		return nil
	}
	return normalizeString(*value)
}

func cleanPreferences(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
