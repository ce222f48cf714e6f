package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
	"github.com/octobees/vendor-outreach/internal/metrics"
	"github.com/octobees/vendor-outreach/internal/service/matching"
)

// MatchService runs matching passes for ad-hoc requirement sets and stored weddings.
type MatchService struct {
	matcher  *matching.Matcher
	weddings *WeddingsService
	logger   *zap.Logger
}

// NewMatchService wires the matcher around loader. Candidate counts are recorded in metrics.
func NewMatchService(loader matching.VendorLoader, weddings *WeddingsService, logger *zap.Logger) *MatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchService{
		matcher:  matching.NewMatcher(countingLoader{next: loader}),
		weddings: weddings,
		logger:   logger,
	}
}

// Match validates req and returns grouped matches with the chat narrative.
func (s *MatchService) Match(ctx context.Context, req dto.MatchRequest) (dto.MatchResponse, error) {
	requirements := matching.Requirements{
		Location:    strings.TrimSpace(req.Location),
		GuestCount:  req.GuestCount,
		BudgetTotal: req.BudgetTotal,
		Style:       strings.TrimSpace(req.Style),
		Preferences: cleanPreferences(req.Preferences),
	}
	if requirements.Location == "" {
		return dto.MatchResponse{}, ErrLocationRequired
	}
	if requirements.GuestCount != nil && *requirements.GuestCount <= 0 {
		return dto.MatchResponse{}, invalid("guest_count", "guest_count must be positive")
	}
	if requirements.BudgetTotal != nil && *requirements.BudgetTotal <= 0 {
		return dto.MatchResponse{}, invalid("budget_total", "budget_total must be positive")
	}
	return s.run(ctx, requirements)
}

// MatchWedding runs a pass using the requirements stored on one of the user's weddings.
func (s *MatchService) MatchWedding(ctx context.Context, userID, weddingID string) (dto.MatchResponse, error) {
	wedding, err := s.weddings.GetWedding(ctx, userID, weddingID)
	if err != nil {
		return dto.MatchResponse{}, err
	}
	return s.run(ctx, RequirementsFromWedding(*wedding))
}

// RequirementsFromWedding converts a stored wedding into a requirement set.
func RequirementsFromWedding(w entity.Wedding) matching.Requirements {
	req := matching.Requirements{
		Location:    w.Location,
		GuestCount:  w.GuestCount,
		BudgetTotal: w.BudgetTotal,
		Preferences: w.Preferences,
	}
	if w.Style != nil {
		req.Style = *w.Style
	}
	return req
}

func (s *MatchService) run(ctx context.Context, req matching.Requirements) (dto.MatchResponse, error) {
	start := time.Now()
	matches, err := s.matcher.FindMatchingVendors(ctx, req)
	metrics.MatchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MatchPasses.WithLabelValues("error").Inc()
		s.logger.Error("matching pass failed", zap.String("location", req.Location), zap.Error(err))
		return dto.MatchResponse{}, err
	}

	outcome := "matched"
	if matches.TotalMatches == 0 {
		outcome = "empty"
	}
	metrics.MatchPasses.WithLabelValues(outcome).Inc()
	s.logger.Info("matching pass completed",
		zap.String("location", req.Location),
		zap.Int("total_matches", matches.TotalMatches),
		zap.Duration("duration", time.Since(start)),
	)

	return dto.MatchResponse{Matches: matches, Summary: matching.FormatForChat(matches)}, nil
}

type countingLoader struct {
	next matching.VendorLoader
}

func (l countingLoader) FindByLocation(ctx context.Context, location string) ([]entity.Vendor, error) {
	vendors, err := l.next.FindByLocation(ctx, location)
	if err == nil {
		metrics.CandidatesScored.Observe(float64(len(vendors)))
	}
	return vendors, err
}
