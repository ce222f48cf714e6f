package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/vendor-outreach/internal/auth"
	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
	"github.com/octobees/vendor-outreach/internal/service"
)

func newAuthHandler(repo *stubUsersRepo) (*AuthHandler, *auth.JWTManager) {
	manager := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthHandler(service.NewAuthService(repo, manager)), manager
}

func TestAuthHandler_Register(t *testing.T) {
	repo := newStubUsersRepo(entity.User{ID: uuid.New(), Email: "taken@example.com", Role: entity.RolePlanner})
	handler, manager := newAuthHandler(repo)

	tests := map[string]struct {
		body    any
		code    int
		message string
	}{
		"invalid payload": {body: "{", code: http.StatusBadRequest, message: "invalid payload"},
		"invalid email":   {body: map[string]string{"email": "sam", "password": "long-enough"}, code: http.StatusBadRequest, message: "a valid email is required"},
		"short password":  {body: map[string]string{"email": "sam@example.com", "password": "short"}, code: http.StatusBadRequest, message: "password must be at least 8 characters"},
		"taken email":     {body: map[string]string{"email": "Taken@example.com", "password": "long-enough"}, code: http.StatusConflict, message: "email already exists"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, rec := newJSONContext(t, http.MethodPost, "/auth/register", tt.body, "")
			_ = handler.Register(c)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if payload := decodeEnvelope(t, rec, nil); payload.Message != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, payload.Message)
			}
		})
	}

	c, rec := newJSONContext(t, http.MethodPost, "/auth/register", map[string]string{"email": "sam@example.com", "name": "Sam & Alex", "password": "long-enough"}, "")
	if err := handler.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.TokenResponse
	decodeEnvelope(t, rec, &resp)
	claims, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("expected a valid token: %v", err)
	}
	if claims.Name != "Sam & Alex" || claims.Role != entity.RolePlanner || resp.User.Email != "sam@example.com" {
		t.Fatalf("unexpected registration result: %+v / %+v", claims, resp.User)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("long-enough"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := newStubUsersRepo(entity.User{ID: uuid.New(), Email: "sam@example.com", Name: "Sam & Alex", PasswordHash: string(hashed), Role: entity.RolePlanner})
	handler, _ := newAuthHandler(repo)

	tests := map[string]struct {
		body any
		err  error
		code int
	}{
		"invalid payload":  {body: "{", code: http.StatusBadRequest},
		"missing fields":   {body: map[string]string{"email": "sam@example.com"}, code: http.StatusBadRequest},
		"wrong password":   {body: map[string]string{"email": "sam@example.com", "password": "not-it-at-all"}, code: http.StatusUnauthorized},
		"unknown email":    {body: map[string]string{"email": "who@example.com", "password": "long-enough"}, code: http.StatusUnauthorized},
		"repository error": {body: map[string]string{"email": "sam@example.com", "password": "long-enough"}, err: errors.New("db down"), code: http.StatusInternalServerError},
		"success":          {body: map[string]string{"email": "SAM@example.com", "password": "long-enough"}, code: http.StatusOK},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo.err = tt.err
			c, rec := newJSONContext(t, http.MethodPost, "/auth/login", tt.body, "")
			_ = handler.Login(c)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			if tt.code != http.StatusOK {
				return
			}
			var resp dto.TokenResponse
			decodeEnvelope(t, rec, &resp)
			if resp.AccessToken == "" || resp.TokenType != "Bearer" || resp.User.Name != "Sam & Alex" {
				t.Fatalf("unexpected login response: %+v", resp)
			}
		})
	}
}
