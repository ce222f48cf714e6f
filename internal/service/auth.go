package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/vendor-outreach/internal/auth"
	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
	"github.com/octobees/vendor-outreach/internal/repository"
)

// AuthService signs couples up and exchanges credentials for access tokens.
type AuthService struct {
	users repository.UsersRepository
	jwt   *auth.JWTManager
}

func NewAuthService(users repository.UsersRepository, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwtManager}
}

// Login returns a token for valid credentials and ErrInvalidCredentials otherwise.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (dto.TokenResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return dto.TokenResponse{}, invalid("email", "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		return dto.TokenResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	return s.issue(*user)
}

// Register creates a planner account and signs it in.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (dto.TokenResponse, error) {
	email, err := accountEmail(req.Email)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	name, err := accountName(req.Name)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	user, err := s.users.Create(ctx, &entity.User{Email: email, Name: name, PasswordHash: hashed, Role: entity.RolePlanner})
	if err != nil {
		if errors.Is(err, repository.ErrEmailDuplicate) {
			return dto.TokenResponse{}, ErrEmailAlreadyExists
		}
		return dto.TokenResponse{}, err
	}

	return s.issue(*user)
}

func (s *AuthService) issue(user entity.User) (dto.TokenResponse, error) {
	token, expires, err := s.jwt.GenerateToken(user)
	if err != nil {
		return dto.TokenResponse{}, fmt.Errorf("issue token: %w", err)
	}
	return dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
		User:        toUserResponse(user),
	}, nil
}
