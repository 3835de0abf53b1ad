package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
)

// UserWithRole is the administrative view of an account and its grants.
// The password hash is never exposed.
type UserWithRole struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Patronymic   string     `json:"patronymic"`
	IsActive     bool       `json:"is_active"`
	RegisteredAt time.Time  `json:"registered_at"`
	RoleID       uuid.UUID  `json:"role_id"`
	Role         *rbac.Role `json:"role"`
}

func newUserWithRole(u *auth.User) UserWithRole {
	return UserWithRole{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Patronymic:   u.Patronymic,
		IsActive:     u.IsActive,
		RegisteredAt: u.RegisteredAt,
		RoleID:       u.RoleID,
		Role:         u.Role,
	}
}
