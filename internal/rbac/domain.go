package rbac

import (
	"github.com/google/uuid"
)

// Role represents a named bundle of permissions.
type Role struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Permission represents an atomic capability identified by Code.
type Permission struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
}

// Codes returns the permission codes granted by the role.
func (r *Role) Codes() []string {
	if r == nil {
		return nil
	}
	codes := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		codes = append(codes, p.Code)
	}
	return codes
}

// Grants reports whether the role carries the permission code.
func (r *Role) Grants(code string) bool {
	if r == nil {
		return false
	}
	for _, p := range r.Permissions {
		if p.Code == code {
			return true
		}
	}
	return false
}

// Principal describes the authenticated actor.
type Principal interface {
	GetID() uuid.UUID
	Enabled() bool
	HasPermission(code string) bool
}
