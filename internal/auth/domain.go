package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
)

// User represents a registered account and the principal resolved by the gate.
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Patronymic   string
	Email        string
	PasswordHash string
	IsActive     bool
	RoleID       uuid.UUID
	Role         *rbac.Role
	RegisteredAt time.Time
}

// GetID implements rbac.Principal.
func (u *User) GetID() uuid.UUID { return u.ID }

// Enabled implements rbac.Principal.
func (u *User) Enabled() bool { return u.IsActive }

// HasPermission implements rbac.Principal using the eagerly loaded role.
func (u *User) HasPermission(code string) bool { return u.Role.Grants(code) }

// RoleName returns the assigned role name or an empty string when unloaded.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

func (u *User) assignRole(role *rbac.Role) {
	u.Role = role
	u.RoleID = role.ID
}

// RegisterInput carries registration fields.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Patronymic      string
	Email           string
	Password        string
	PasswordConfirm string
}

// UpdateProfileInput carries optional profile changes; nil fields are untouched.
type UpdateProfileInput struct {
	FirstName       *string
	LastName        *string
	Patronymic      *string
	CurrentPassword *string
	Password        *string
	PasswordConfirm *string
}

var _ rbac.Principal = (*User)(nil)
