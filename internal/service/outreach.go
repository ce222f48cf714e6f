package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/vendor-outreach/internal/ai"
	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
	"github.com/octobees/vendor-outreach/internal/mailer"
	"github.com/octobees/vendor-outreach/internal/metrics"
	"github.com/octobees/vendor-outreach/internal/repository"
)

const (
	defaultSendBatchSize = 10
	maxVendorsPerRequest = 20
)

// Reasons reported for vendors that did not receive a draft.
const (
	SkipVendorNotFound   = "vendor not found"
	SkipNoEmail          = "vendor has no email address"
	SkipUndeliverable    = "vendor email is not deliverable"
	SkipGenerationFailed = "draft generation failed"
)

// OutreachDependencies groups the collaborators of OutreachService.
type OutreachDependencies struct {
	Weddings  *WeddingsService
	Vendors   repository.VendorsRepository
	Outreach  repository.OutreachRepository
	Users     repository.UsersRepository
	Generator ai.Generator
	Mailer    mailer.Mailer
	Contacts  *ContactNormalizer
	BatchSize int
	Logger    *zap.Logger
}

// OutreachService drafts, sends and tracks vendor enquiry emails.
type OutreachService struct {
	weddings  *WeddingsService
	vendors   repository.VendorsRepository
	repo      repository.OutreachRepository
	users     repository.UsersRepository
	generator ai.Generator
	mailer    mailer.Mailer
	contacts  *ContactNormalizer
	batchSize int
	logger    *zap.Logger
}

// NewOutreachService builds the service. A nil Generator falls back to a fixed template.
func NewOutreachService(deps OutreachDependencies) *OutreachService {
	s := &OutreachService{
		weddings:  deps.Weddings,
		vendors:   deps.Vendors,
		repo:      deps.Outreach,
		users:     deps.Users,
		generator: deps.Generator,
		mailer:    deps.Mailer,
		contacts:  deps.Contacts,
		batchSize: deps.BatchSize,
		logger:    deps.Logger,
	}
	if s.contacts == nil {
		s.contacts = NewContactNormalizer(defaultPhoneRegion)
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultSendBatchSize
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Generate drafts one email per requested vendor and stores them as drafts.
func (s *OutreachService) Generate(ctx context.Context, userID, weddingID string, req dto.GenerateOutreachRequest) (dto.GenerateOutreachResponse, error) {
	wedding, err := s.weddings.GetWedding(ctx, userID, weddingID)
	if err != nil {
		return dto.GenerateOutreachResponse{}, err
	}

	vendorIDs, err := parseIDs("vendor_ids", req.VendorIDs)
	if err != nil {
		return dto.GenerateOutreachResponse{}, err
	}
	if len(vendorIDs) == 0 {
		return dto.GenerateOutreachResponse{}, invalid("vendor_ids", "vendor_ids is required")
	}
	if len(vendorIDs) > maxVendorsPerRequest {
		return dto.GenerateOutreachResponse{}, invalid("vendor_ids", fmt.Sprintf("vendor_ids accepts at most %d vendors", maxVendorsPerRequest))
	}

	vendors, err := s.vendors.GetByIDs(ctx, vendorIDs)
	if err != nil {
		return dto.GenerateOutreachResponse{}, fmt.Errorf("load vendors: %w", err)
	}
	byID := make(map[uuid.UUID]entity.Vendor, len(vendors))
	for _, v := range vendors {
		byID[v.ID] = v
	}

	signOff := s.sender(ctx, wedding.UserID).signOff()
	resp := dto.GenerateOutreachResponse{Drafts: []entity.Outreach{}, Skipped: []dto.SkippedVendor{}}
	skip := func(id uuid.UUID, reason string) {
		metrics.OutreachDrafted.WithLabelValues("skipped").Inc()
		resp.Skipped = append(resp.Skipped, dto.SkippedVendor{VendorID: id.String(), Reason: reason})
	}

	for _, id := range vendorIDs {
		vendor, ok := byID[id]
		if !ok {
			skip(id, SkipVendorNotFound)
			continue
		}
		if vendor.Email == nil {
			skip(id, SkipNoEmail)
			continue
		}
		recipient, err := s.contacts.DeliverableEmail(ctx, *vendor.Email)
		if err != nil {
			skip(id, SkipUndeliverable)
			continue
		}

		draft, err := s.draft(ctx, *wedding, vendor, signOff)
		if err != nil {
			s.logger.Warn("outreach draft generation failed",
				zap.String("wedding_id", wedding.ID.String()),
				zap.String("vendor_id", vendor.ID.String()),
				zap.Error(err),
			)
			skip(id, SkipGenerationFailed)
			continue
		}

		stored, err := s.repo.Create(ctx, &entity.Outreach{
			WeddingID:      wedding.ID,
			VendorID:       vendor.ID,
			RecipientEmail: recipient,
			Subject:        draft.Subject,
			Body:           draft.Body,
			Status:         entity.OutreachDraft,
		})
		if err != nil {
			metrics.OutreachDrafted.WithLabelValues("error").Inc()
			return dto.GenerateOutreachResponse{}, err
		}
		metrics.OutreachDrafted.WithLabelValues("created").Inc()
		resp.Drafts = append(resp.Drafts, *stored)
	}

	s.logger.Info("outreach drafts generated",
		zap.String("wedding_id", wedding.ID.String()),
		zap.Int("drafts", len(resp.Drafts)),
		zap.Int("skipped", len(resp.Skipped)),
	)
	return resp, nil
}

func (s *OutreachService) draft(ctx context.Context, w entity.Wedding, v entity.Vendor, signOff string) (outreachDraft, error) {
	if s.generator == nil {
		return templateDraft(w, v, signOff), nil
	}
	prompt, err := buildOutreachPrompt(w, v, signOff)
	if err != nil {
		return outreachDraft{}, err
	}
	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return outreachDraft{}, err
	}
	return parseOutreachDraft(raw, w)
}

// Send claims the selected outreach and delivers it with at most batchSize messages in flight.
// Every claimed message ends up sent or failed. A persistence error stops further deliveries
// and is returned; messages left in sending are claimed again after
// repository.StaleClaimAfter.
func (s *OutreachService) Send(ctx context.Context, userID, weddingID string, req dto.SendOutreachRequest) (dto.SendOutreachResponse, error) {
	wedding, err := s.weddings.GetWedding(ctx, userID, weddingID)
	if err != nil {
		return dto.SendOutreachResponse{}, err
	}
	ids, err := parseIDs("outreach_ids", req.OutreachIDs)
	if err != nil {
		return dto.SendOutreachResponse{}, err
	}

	claimed, err := s.repo.ClaimSendable(ctx, wedding.ID, ids)
	if err != nil {
		return dto.SendOutreachResponse{}, err
	}
	if len(claimed) == 0 {
		return dto.SendOutreachResponse{}, ErrNothingToSend
	}

	replyTo := s.sender(ctx, wedding.UserID).email
	delivered := make([]*entity.Outreach, len(claimed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchSize)
	for i, item := range claimed {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			messageID, sendErr := s.mailer.Send(gctx, mailer.Message{
				To:      item.RecipientEmail,
				Subject: item.Subject,
				Body:    item.Body,
				ReplyTo: replyTo,
			})
			updated, err := s.recordDelivery(gctx, item, messageID, sendErr)
			if err != nil {
				return fmt.Errorf("record delivery of %s: %w", item.ID, err)
			}
			delivered[i] = updated
			return nil
		})
	}
	runErr := g.Wait()

	resp := dto.SendOutreachResponse{Results: make([]entity.Outreach, 0, len(claimed))}
	for _, updated := range delivered {
		if updated == nil {
			continue
		}
		if updated.Status == entity.OutreachSent {
			resp.Sent++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, *updated)
	}
	if runErr != nil {
		return resp, runErr
	}

	s.logger.Info("outreach delivery completed",
		zap.String("wedding_id", wedding.ID.String()),
		zap.String("provider", s.mailer.Name()),
		zap.Int("sent", resp.Sent),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// recordDelivery stores the outcome of one send. A row whose claim was taken over by another
// run is logged and left to that run.
func (s *OutreachService) recordDelivery(ctx context.Context, item entity.Outreach, messageID string, sendErr error) (*entity.Outreach, error) {
	var (
		updated *entity.Outreach
		err     error
	)
	if sendErr != nil {
		metrics.OutreachDelivered.WithLabelValues(s.mailer.Name(), string(entity.OutreachFailed)).Inc()
		s.logger.Warn("outreach delivery failed",
			zap.String("outreach_id", item.ID.String()),
			zap.String("recipient", item.RecipientEmail),
			zap.Error(sendErr),
		)
		msg := sendErr.Error()
		updated, err = s.repo.MarkDelivery(ctx, item.ID, entity.OutreachFailed, nil, &msg)
	} else {
		metrics.OutreachDelivered.WithLabelValues(s.mailer.Name(), string(entity.OutreachSent)).Inc()
		updated, err = s.repo.MarkDelivery(ctx, item.ID, entity.OutreachSent, &messageID, nil)
	}

	if errors.Is(err, repository.ErrOutreachStatusChanged) {
		s.logger.Warn("outreach claim lost before delivery was recorded", zap.String("outreach_id", item.ID.String()))
		return nil, nil
	}
	return updated, err
}

// sender is the couple an outreach email is written for.
type sender struct {
	email string
	name  string
}

func (s sender) signOff() string {
	if s.name != "" {
		return s.name
	}
	return defaultSignOff
}

// sender looks up the couple behind a wedding. Their email becomes the Reply-To and their name
// signs the draft. Lookup failures leave both blank.
func (s *OutreachService) sender(ctx context.Context, userID uuid.UUID) sender {
	if s.users == nil {
		return sender{}
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("sender lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
		return sender{}
	}
	from := sender{name: strings.TrimSpace(user.Name)}
	if email, ok := s.contacts.CleanEmail(user.Email); ok {
		from.email = email
	}
	return from
}

// ListOutreach returns every outreach for one of the user's weddings.
func (s *OutreachService) ListOutreach(ctx context.Context, userID, weddingID string) ([]entity.Outreach, error) {
	wedding, err := s.weddings.GetWedding(ctx, userID, weddingID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByWedding(ctx, wedding.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []entity.Outreach{}
	}
	return items, nil
}

var responseStatuses = map[entity.OutreachStatus]struct{}{
	entity.OutreachResponded: {},
	entity.OutreachDeclined:  {},
	entity.OutreachBooked:    {},
}

// UpdateOutreach records a vendor's response. A blank status only updates the notes.
func (s *OutreachService) UpdateOutreach(ctx context.Context, userID, outreachID string, req dto.UpdateOutreachRequest) (*entity.Outreach, error) {
	owner, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(strings.TrimSpace(outreachID))
	if err != nil {
		return nil, invalid("id", "invalid outreach id")
	}

	current, err := s.repo.GetForUser(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	next := entity.OutreachStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	switch {
	case next == "":
		if req.ResponseNotes == nil {
			return nil, invalid("status", "status or response_notes is required")
		}
		next = current.Status
	case !next.Valid():
		return nil, invalid("status", "unknown status")
	default:
		if _, ok := responseStatuses[next]; !ok {
			return nil, invalid("status", "status must be one of responded, declined, booked")
		}
		if next != current.Status && !current.Status.CanTransition(next) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, next)
		}
	}

	updated, err := s.repo.UpdateResponse(ctx, id, current.Status, next, req.ResponseNotes)
	if errors.Is(err, repository.ErrOutreachStatusChanged) {
		return nil, fmt.Errorf("%w: %s changed while updating", ErrInvalidTransition, current.Status)
	}
	return updated, err
}

// Dashboard summarises outreach progress for one of the user's weddings.
func (s *OutreachService) Dashboard(ctx context.Context, userID, weddingID string) (dto.Dashboard, error) {
	wedding, err := s.weddings.GetWedding(ctx, userID, weddingID)
	if err != nil {
		return dto.Dashboard{}, err
	}
	counts, err := s.repo.CountByStatus(ctx, wedding.ID)
	if err != nil {
		return dto.Dashboard{}, err
	}
	return buildDashboard(wedding.ID, counts), nil
}

// buildDashboard reports every known status, zero included. The response rate is the share of
// delivered outreach that received any reply.
func buildDashboard(weddingID uuid.UUID, counts map[entity.OutreachStatus]int) dto.Dashboard {
	d := dto.Dashboard{WeddingID: weddingID.String(), Counts: make(map[string]int, len(entity.OutreachStatuses))}
	for _, status := range entity.OutreachStatuses {
		d.Counts[string(status)] = counts[status]
		d.Total += counts[status]
	}

	replied := counts[entity.OutreachResponded] + counts[entity.OutreachDeclined] + counts[entity.OutreachBooked]
	delivered := counts[entity.OutreachSent] + replied
	if delivered > 0 {
		d.ResponseRate = float64(replied) / float64(delivered)
	}
	return d
}

func parseIDs(field string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]struct{}, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, invalid(field, fmt.Sprintf("invalid id in %s: %q", field, value))
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
