package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
	"github.com/octobees/vendor-outreach/internal/repository"
)

// UserService backs the admin account endpoints.
type UserService struct {
	repo repository.UsersRepository
}

func NewUserService(repo repository.UsersRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, toUserResponse(u))
	}
	return responses, nil
}

// CreateUser provisions an account. A blank role creates a planner.
func (s *UserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	email, err := accountEmail(req.Email)
	if err != nil {
		return nil, err
	}
	name, err := accountName(req.Name)
	if err != nil {
		return nil, err
	}
	role, err := accountRole(req.Role)
	if err != nil {
		return nil, err
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, &entity.User{Email: email, Name: name, PasswordHash: hashed, Role: role})
	if err != nil {
		return nil, accountWriteError(err)
	}

	resp := toUserResponse(*user)
	return &resp, nil
}

// UpdateUser applies the fields present in req.
func (s *UserService) UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	userID, err := parseAccountID(id)
	if err != nil {
		return nil, err
	}

	var patch repository.UserPatch
	if req.Email != nil {
		email, err := accountEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	if req.Name != nil {
		name, err := accountName(*req.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if req.Role != nil {
		if strings.TrimSpace(*req.Role) == "" {
			return nil, invalid("role", "role cannot be empty")
		}
		role, err := accountRole(*req.Role)
		if err != nil {
			return nil, err
		}
		patch.Role = &role
	}
	if req.Password != nil {
		hashed, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hashed
	}

	user, err := s.repo.Update(ctx, userID, patch)
	if err != nil {
		return nil, accountWriteError(err)
	}

	resp := toUserResponse(*user)
	return &resp, nil
}

// DeleteUser removes an account. Admins cannot delete the account they are signed in with.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id string) error {
	userID, err := parseAccountID(id)
	if err != nil {
		return err
	}
	if actorID == userID.String() {
		return invalid("id", "you cannot delete your own account")
	}
	return s.repo.Delete(ctx, userID)
}

func parseAccountID(id string) (uuid.UUID, error) {
	userID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, invalid("id", "invalid user id")
	}
	return userID, nil
}

func accountWriteError(err error) error {
	if errors.Is(err, repository.ErrEmailDuplicate) {
		return ErrEmailAlreadyExists
	}
	return err
}
