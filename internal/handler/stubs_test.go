package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
	middlewarepkg "github.com/octobees/vendor-outreach/internal/middleware"
	"github.com/octobees/vendor-outreach/internal/repository"
)

var ownerID = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")

type stubVendorsRepo struct {
	vendors    []entity.Vendor
	lastFilter dto.VendorFilter
	bulk       func(ctx context.Context, records []repository.BulkUpsertVendorInput) (repository.BulkUpsertResult, error)
	err        error
}

func (s *stubVendorsRepo) FindByLocation(ctx context.Context, location string) ([]entity.Vendor, error) {
	return s.vendors, s.err
}

func (s *stubVendorsRepo) List(ctx context.Context, filter dto.VendorFilter) ([]entity.Vendor, error) {
	s.lastFilter = filter
	return s.vendors, s.err
}

func (s *stubVendorsRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error) {
	for _, v := range s.vendors {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, repository.ErrVendorNotFound
}

func (s *stubVendorsRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Vendor, error) {
	var out []entity.Vendor
	for _, id := range ids {
		if v, err := s.GetByID(ctx, id); err == nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *stubVendorsRepo) BulkUpsert(ctx context.Context, records []repository.BulkUpsertVendorInput) (repository.BulkUpsertResult, error) {
	if s.bulk != nil {
		return s.bulk(ctx, records)
	}
	return repository.BulkUpsertResult{Inserted: len(records), Total: len(records)}, nil
}

// stubWeddingsRepo stores weddings in memory, scoped by owner.
type stubWeddingsRepo struct {
	weddings map[uuid.UUID]entity.Wedding
}

func newStubWeddingsRepo(weddings ...entity.Wedding) *stubWeddingsRepo {
	s := &stubWeddingsRepo{weddings: make(map[uuid.UUID]entity.Wedding)}
	for _, w := range weddings {
		s.weddings[w.ID] = w
	}
	return s
}

func (s *stubWeddingsRepo) Create(ctx context.Context, wedding *entity.Wedding) (*entity.Wedding, error) {
	stored := *wedding
	stored.ID = uuid.New()
	s.weddings[stored.ID] = stored
	return &stored, nil
}

func (s *stubWeddingsRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Wedding, error) {
	var out []entity.Wedding
	for _, w := range s.weddings {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *stubWeddingsRepo) GetForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Wedding, error) {
	w, ok := s.weddings[id]
	if !ok || w.UserID != userID {
		return nil, repository.ErrWeddingNotFound
	}
	return &w, nil
}

func (s *stubWeddingsRepo) Update(ctx context.Context, wedding *entity.Wedding) (*entity.Wedding, error) {
	if _, err := s.GetForUser(ctx, wedding.ID, wedding.UserID); err != nil {
		return nil, err
	}
	s.weddings[wedding.ID] = *wedding
	return wedding, nil
}

func (s *stubWeddingsRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.GetForUser(ctx, id, userID); err != nil {
		return err
	}
	delete(s.weddings, id)
	return nil
}

type stubOutreachRepo struct {
	mu     sync.Mutex
	items  map[uuid.UUID]entity.Outreach
	counts map[entity.OutreachStatus]int
}

func newStubOutreachRepo(items ...entity.Outreach) *stubOutreachRepo {
	s := &stubOutreachRepo{items: make(map[uuid.UUID]entity.Outreach)}
	for _, item := range items {
		s.items[item.ID] = item
	}
	return s
}

func (s *stubOutreachRepo) Create(ctx context.Context, outreach *entity.Outreach) (*entity.Outreach, error) {
	stored := *outreach
	stored.ID = uuid.New()
	s.items[stored.ID] = stored
	return &stored, nil
}

func (s *stubOutreachRepo) ListByWedding(ctx context.Context, weddingID uuid.UUID) ([]entity.Outreach, error) {
	var out []entity.Outreach
	for _, item := range s.items {
		if item.WeddingID == weddingID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubOutreachRepo) ClaimSendable(ctx context.Context, weddingID uuid.UUID, ids []uuid.UUID) ([]entity.Outreach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Outreach
	for id, item := range s.items {
		if item.WeddingID == weddingID && item.Status == entity.OutreachDraft {
			item.Status = entity.OutreachSending
			s.items[id] = item
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubOutreachRepo) GetForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Outreach, error) {
	item, ok := s.items[id]
	if !ok || userID != ownerID {
		return nil, repository.ErrOutreachNotFound
	}
	return &item, nil
}

func (s *stubOutreachRepo) MarkDelivery(ctx context.Context, id uuid.UUID, status entity.OutreachStatus, messageID, deliveryErr *string) (*entity.Outreach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.Status != entity.OutreachSending {
		return nil, repository.ErrOutreachStatusChanged
	}
	item.Status = status
	item.MessageID = messageID
	item.Error = deliveryErr
	s.items[id] = item
	return &item, nil
}

func (s *stubOutreachRepo) UpdateResponse(ctx context.Context, id uuid.UUID, from, to entity.OutreachStatus, notes *string) (*entity.Outreach, error) {
	item, ok := s.items[id]
	if !ok || item.Status != from {
		return nil, repository.ErrOutreachStatusChanged
	}
	item.Status = to
	item.ResponseNotes = notes
	s.items[id] = item
	return &item, nil
}

func (s *stubOutreachRepo) CountByStatus(ctx context.Context, weddingID uuid.UUID) (map[entity.OutreachStatus]int, error) {
	if s.counts == nil {
		return nil, errors.New("counts unavailable")
	}
	return s.counts, nil
}

// stubUsersRepo keeps accounts in memory and enforces unique emails.
type stubUsersRepo struct {
	users map[uuid.UUID]entity.User
	err   error
}

func newStubUsersRepo(users ...entity.User) *stubUsersRepo {
	s := &stubUsersRepo{users: make(map[uuid.UUID]entity.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (s *stubUsersRepo) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	if _, err := s.FindByEmail(ctx, user.Email); err == nil {
		return nil, repository.ErrEmailDuplicate
	}
	stored := *user
	stored.ID = uuid.New()
	s.users[stored.ID] = stored
	return &stored, nil
}

func (s *stubUsersRepo) List(ctx context.Context) ([]entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]entity.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUsersRepo) Update(ctx context.Context, id uuid.UUID, patch repository.UserPatch) (*entity.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	s.users[id] = u
	return &u, nil
}

func (s *stubUsersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// newJSONContext builds an echo context for an authenticated owner request with an optional :id param.
func newJSONContext(t *testing.T, method, path string, body any, id string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set(middlewarepkg.ContextKeyUserID, ownerID.String())
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) APIResponse {
	t.Helper()
	var raw struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return APIResponse{Status: raw.Status, Message: raw.Message}
}
