package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level carried in a user's token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not serialized
	Role         Role      `json:"role"`
	Savings      float64   `json:"savings"` // cached balance, see SavingService
	IsSuspended  bool      `json:"isSuspended"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
