package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// ErrRoleNotFound indicates missing seed data. It wraps shared.ErrConfiguration
// because request flows never create roles.
var ErrRoleNotFound = fmt.Errorf("rbac: role not found: %w", shared.ErrConfiguration)

// RoleRepository defines the role lookups the resolver needs.
type RoleRepository interface {
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
}

// Resolver validates that named roles exist.
type Resolver struct {
	repo RoleRepository
}

// NewResolver constructs a Resolver.
func NewResolver(repo RoleRepository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveRole returns the named role or ErrRoleNotFound.
func (r *Resolver) ResolveRole(ctx context.Context, name string) (*Role, error) {
	role, err := r.repo.FindRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrRoleNotFound, name)
		}
		return nil, err
	}
	return role, nil
}

// ListRoles returns all roles with their permissions.
func (r *Resolver) ListRoles(ctx context.Context) ([]Role, error) {
	return r.repo.ListRoles(ctx)
}
