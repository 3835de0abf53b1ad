package roles

import (
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-auth/internal/rbac"
)

// Role is the listing view of a role: its name and granted permission codes.
type Role struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
}

func fromRBAC(r rbac.Role) Role {
	codes := r.Codes()
	if codes == nil {
		codes = []string{}
	}
	return Role{ID: r.ID, Name: r.Name, Permissions: codes}
}
