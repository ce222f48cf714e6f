package service

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/vendor-outreach/internal/dto"
	"github.com/octobees/vendor-outreach/internal/entity"
)

const (
	minPasswordLength = 8
	maxNameLength     = 80
)

// accountEmails only checks syntax; account addresses are never sent outreach.
var accountEmails = NewContactNormalizer(defaultPhoneRegion)

func accountEmail(raw string) (string, error) {
	email, ok := accountEmails.CleanEmail(raw)
	if !ok {
		return "", invalid("email", "a valid email is required")
	}
	return email, nil
}

func accountName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if len([]rune(name)) > maxNameLength {
		return "", invalid("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	return name, nil
}

func accountRole(raw string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(raw))
	if role == "" {
		return entity.RolePlanner, nil
	}
	if !entity.ValidRole(role) {
		return "", invalid("role", "role must be user or admin")
	}
	return role, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", invalid("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func toUserResponse(u entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
