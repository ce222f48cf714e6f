package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account roles. Planners own weddings; admins also curate the vendor catalogue.
const (
	RolePlanner = "user"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one the API grants.
func ValidRole(role string) bool {
	return role == RolePlanner || role == RoleAdmin
}

// User is an account that plans weddings or administers the catalogue. Name is how the couple
// signs outreach emails, e.g. "Sam & Alex".
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
