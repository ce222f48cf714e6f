package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
	"github.com/octobees/vendor-outreach/internal/repository"
)

func matchFixtures() []entity.Vendor {
	rating := 4.8
	maxGuests := 150
	return []entity.Vendor{
		{ID: uuid.New(), Name: "Hunter Barn", Category: entity.CategoryVenue, Location: "Newcastle", MaxGuests: &maxGuests, Styles: []string{"rustic"}, Rating: &rating},
		{ID: uuid.New(), Name: "Lens & Light", Category: entity.CategoryPhotographer, Location: "Newcastle"},
		{ID: uuid.New(), Name: "Far Away Florals", Category: entity.CategoryFlorist, Location: "Perth"},
	}
}

func TestMatchService_Match(t *testing.T) {
	var queried string
	repo := &mockVendorsRepository{
		findByLocation: func(ctx context.Context, location string) ([]entity.Vendor, error) {
			queried = location
			return matchFixtures()[:2], nil
		},
	}
	core, logs := observer.New(zapcore.InfoLevel)
	service := NewMatchService(repo, nil, zap.New(core))

	guests := 120
	resp, err := service.Match(context.Background(), dto.MatchRequest{Location: " Newcastle ", GuestCount: &guests, Style: "Rustic"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queried != "Newcastle" {
		t.Fatalf("expected trimmed location to reach the loader, got %q", queried)
	}
	if resp.Matches.TotalMatches != 2 || len(resp.Matches.Venues) != 1 || len(resp.Matches.Photographers) != 1 {
		t.Fatalf("unexpected matches: %+v", resp.Matches)
	}
	if resp.Matches.Venues[0].MatchScore != 85 {
		t.Fatalf("expected venue score 85, got %d", resp.Matches.Venues[0].MatchScore)
	}
	if !strings.Contains(resp.Summary, "**1. Hunter Barn** (Newcastle)") {
		t.Fatalf("expected narrative to list the venue, got %q", resp.Summary)
	}
	if logs.FilterMessage("matching pass completed").Len() != 1 {
		t.Fatalf("expected one completion log entry")
	}
}

func TestMatchService_MatchValidation(t *testing.T) {
	called := false
	repo := &mockVendorsRepository{
		findByLocation: func(ctx context.Context, location string) ([]entity.Vendor, error) {
			called = true
			return nil, nil
		},
	}
	service := NewMatchService(repo, nil, nil)
	zero := 0

	tests := map[string]struct {
		req     dto.MatchRequest
		message string
	}{
		"missing location":    {req: dto.MatchRequest{}, message: "location is required"},
		"whitespace location": {req: dto.MatchRequest{Location: " \t "}, message: "location is required"},
		"zero guests":         {req: dto.MatchRequest{Location: "Newcastle", GuestCount: &zero}, message: "guest_count must be positive"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := service.Match(context.Background(), tt.req)
			if err == nil || err.Error() != tt.message {
				t.Fatalf("expected %q, got %v", tt.message, err)
			}
		})
	}
	if called {
		t.Fatalf("loader must not be called for invalid requirements")
	}
}

func TestMatchService_MatchPropagatesLoaderError(t *testing.T) {
	boom := errors.New("database unavailable")
	repo := &mockVendorsRepository{
		findByLocation: func(ctx context.Context, location string) ([]entity.Vendor, error) {
			return nil, boom
		},
	}
	_, err := NewMatchService(repo, nil, nil).Match(context.Background(), dto.MatchRequest{Location: "Newcastle"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped loader error, got %v", err)
	}
}

func TestMatchService_MatchWedding(t *testing.T) {
	weddingID := uuid.New()
	style := "rustic"
	guests := 120
	weddingsRepo := &mockWeddingsRepository{
		getForUser: func(ctx context.Context, id, userID uuid.UUID) (*entity.Wedding, error) {
			if id != weddingID || userID != testUserID {
				return nil, repository.ErrWeddingNotFound
			}
			return &entity.Wedding{ID: id, UserID: userID, Location: "Newcastle", GuestCount: &guests, Style: &style}, nil
		},
	}
	vendorsRepo := &mockVendorsRepository{
		findByLocation: func(ctx context.Context, location string) ([]entity.Vendor, error) {
			return matchFixtures(), nil
		},
	}
	service := NewMatchService(vendorsRepo, NewWeddingsService(weddingsRepo), nil)

	resp, err := service.MatchWedding(context.Background(), testUserID.String(), weddingID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// the Perth florist scores zero and is dropped
	if resp.Matches.TotalMatches != 2 {
		t.Fatalf("expected 2 matches, got %d", resp.Matches.TotalMatches)
	}

	if _, err := service.MatchWedding(context.Background(), uuid.NewString(), weddingID.String()); !errors.Is(err, repository.ErrWeddingNotFound) {
		t.Fatalf("expected ErrWeddingNotFound, got %v", err)
	}
}

func TestRequirementsFromWedding(t *testing.T) {
	budget := int64(5000000)
	req := RequirementsFromWedding(entity.Wedding{Location: "Newcastle", BudgetTotal: &budget, Preferences: []string{"outdoor"}})
	if req.Location != "Newcastle" || req.Style != "" || req.BudgetTotal == nil || *req.BudgetTotal != budget {
		t.Fatalf("unexpected requirements: %+v", req)
	}
}
